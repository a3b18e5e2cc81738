package textutil

import "testing"

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"héllo wörld", 7, "héllo w"},
		{"abc", 0, "abc"},
		{"", 3, ""},
	}
	for _, tc := range cases {
		if got := TruncateRunes(tc.in, tc.limit); got != tc.want {
			t.Fatalf("TruncateRunes(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"jane.doe":          "jane.doe",
		"UCabc-123_x":       "UCabc-123_x",
		"../etc/passwd":     "-etc-passwd",
		" a:b*c? ":          "a-b-c",
		"..":                "",
		"tab\there\x00null": "tabherenull",
		"":                  "",
	}
	for in, want := range cases {
		if got := SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", " b ", "c"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := FirstNonEmpty(" ", ""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
