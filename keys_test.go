package oslocache

import (
	"strings"
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	var g KeyGenerator
	a := g.Generate("users", "LoadUser", 1, 2)
	b := g.Generate("users", "LoadUser", 1, 2)
	if a != b {
		t.Fatalf("equal calls produced different keys: %q vs %q", a, b)
	}
}

func TestGenerateOrderMatters(t *testing.T) {
	var g KeyGenerator
	a := g.Generate("ns", "F", 1, 2)
	b := g.Generate("ns", "F", 2, 1)
	if a == b {
		t.Fatalf("argument order should matter, both %q", a)
	}
}

func TestGenerateDistinguishesFunctions(t *testing.T) {
	var g KeyGenerator
	a := g.Generate("ns", "pkg.F", 1)
	b := g.Generate("ns", "pkg.G", 1)
	if a == b {
		t.Fatalf("different functions should never share a key")
	}
}

func TestGenerateKWSortedNames(t *testing.T) {
	var g KeyGenerator
	a := g.GenerateKW("ns", "F", []any{1}, map[string]any{"x": 1, "y": 2})
	b := g.GenerateKW("ns", "F", []any{1}, map[string]any{"y": 2, "x": 1})
	if a != b {
		t.Fatalf("equal kwargs should key identically: %q vs %q", a, b)
	}
	if !strings.Contains(a, "x=1 y=2") {
		t.Fatalf("kwargs not serialized in sorted name order: %q", a)
	}
}

func TestDefaultToString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"s", "s"},
		{[]byte("raw"), "raw"},
		{42, "42"},
		{3.5, "3.5"},
		{true, "true"},
		{nil, "<nil>"},
	}
	for _, tt := range tests {
		if got := DefaultToString(tt.in); got != tt.want {
			t.Fatalf("DefaultToString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSHA1KeyManglerBounded(t *testing.T) {
	var g KeyGenerator
	long := g.Generate("ns", "F", strings.Repeat("x", 10000))
	mangled := SHA1KeyMangler(long)
	if len(mangled) != 40 {
		t.Fatalf("mangled key length = %d, want 40 hex chars", len(mangled))
	}
	if SHA1KeyMangler(long) != mangled {
		t.Fatalf("mangler not deterministic")
	}
}

func TestSHA1KeyManglerDistinct(t *testing.T) {
	if SHA1KeyMangler("a") == SHA1KeyMangler("b") {
		t.Fatalf("distinct keys mangled to the same digest")
	}
}

func TestEscapeNonASCII(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"año", "a&#241;o"},
		{"ключ", "&#1082;&#1083;&#1102;&#1095;"},
		{"mixed 値", "mixed &#20516;"},
	}
	for _, tt := range tests {
		if got := escapeNonASCII(tt.in); got != tt.want {
			t.Fatalf("escapeNonASCII(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSHA1KeyManglerNonASCII(t *testing.T) {
	// escaping must make the digest match the escaped ASCII form
	if SHA1KeyMangler("año") != SHA1KeyMangler("a&#241;o") {
		t.Fatalf("non-ASCII key should hash via its escaped form")
	}
}
