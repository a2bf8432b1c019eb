package dashboard

import (
	"context"
	"strings"
)

// TranslationService exposes locale-aware translation helpers backed by the
// host application's i18n engine. Transports and the renderer rely on this
// lightweight interface only.
type TranslationService interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

// ResolveTitle returns the display title for a widget: the user override wins;
// otherwise the i18n key is translated, falling back to the raw key.
func ResolveTitle(ctx context.Context, svc TranslationService, w Widget, locale string) string {
	if w.TitleCustom != "" {
		return w.TitleCustom
	}
	return translateOrFallback(ctx, svc, w.TitleKey, locale, w.TitleKey, nil)
}

// ResolveDescription mirrors ResolveTitle for the description pair.
func ResolveDescription(ctx context.Context, svc TranslationService, w Widget, locale string) string {
	if w.DescriptionCustom != "" {
		return w.DescriptionCustom
	}
	if w.DescriptionKey == "" {
		return ""
	}
	return translateOrFallback(ctx, svc, w.DescriptionKey, locale, w.DescriptionKey, nil)
}

// ResolveLocalizedValue selects the best translation for the provided locale
// and falls back to the supplied value. Keys are matched case-insensitively,
// and language-region pairs (`es-mx`) fall back to their base language (`es`).
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		if candidate == "" {
			continue
		}
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	if value, ok := values["default"]; ok && value != "" {
		return value
	}
	return fallback
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.TrimSpace(strings.ToLower(locale))
}

func translateOrFallback(ctx context.Context, svc TranslationService, key, locale, fallback string, params map[string]any) string {
	if svc != nil && key != "" {
		if translated, err := svc.Translate(ctx, key, locale, params); err == nil && translated != "" {
			return translated
		}
	}
	if fallback != "" {
		return fallback
	}
	return key
}
