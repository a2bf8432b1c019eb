package dashboard

import (
	"encoding/json"
	"testing"
)

func decodeJSON(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestResolvePath(t *testing.T) {
	root := decodeJSON(t, `{
		"data": {
			"items": [
				{"name": "first", "total": 12.5},
				{"name": "second", "total": 3}
			],
			"count": 2
		},
		"length": "shadowed"
	}`)

	cases := []struct {
		path string
		want any
		ok   bool
	}{
		{"", root, true},
		{"data.count", float64(2), true},
		{"data.items.0.name", "first", true},
		{"data.items.1.total", float64(3), true},
		{"data.items.length", float64(2), true},
		{"length", "shadowed", true},
		{"data.missing", nil, false},
		{"data.items.7", nil, false},
		{"data.items.-1", nil, false},
		{"data.count.deeper", nil, false},
		{"data..count", nil, false},
	}
	for _, tc := range cases {
		got, ok := ResolvePath(root, tc.path)
		if ok != tc.ok {
			t.Fatalf("%q: ok=%v want %v", tc.path, ok, tc.ok)
		}
		if !ok {
			continue
		}
		if tc.path == "" {
			continue
		}
		if got != tc.want {
			t.Fatalf("%q: got %v want %v", tc.path, got, tc.want)
		}
	}
}

func TestResolvePathLengthOnlyOnArrays(t *testing.T) {
	root := decodeJSON(t, `{"obj": {"a": 1}}`)
	if _, ok := ResolvePath(root, "obj.length"); ok {
		t.Fatal("length must not apply to objects")
	}
}

func TestPathNumber(t *testing.T) {
	if v, ok := pathNumber(" 42.5 "); !ok || v != 42.5 {
		t.Fatalf("string coercion: %v %v", v, ok)
	}
	if v, ok := pathNumber(true); !ok || v != 1 {
		t.Fatalf("bool coercion: %v %v", v, ok)
	}
	if _, ok := pathNumber(map[string]any{}); ok {
		t.Fatal("objects are not numeric")
	}
}

func TestPathString(t *testing.T) {
	if pathString(float64(3)) != "3" {
		t.Fatal("whole floats should not carry a decimal point")
	}
	if pathString(nil) != "" {
		t.Fatal("nil renders empty")
	}
}
