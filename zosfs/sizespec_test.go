package zosfs

import "testing"

func TestParseSizeSpec(t *testing.T) {
	cases := map[string]int64{
		"1024":  1024,
		"1KB":   1024,
		"1kb":   1024,
		"2MB":   2 * 1024 * 1024,
		"1GB":   1024 * 1024 * 1024,
		" 5MB ": 5 * 1024 * 1024,
	}
	for spec, want := range cases {
		got, err := ParseSizeSpec(spec)
		if err != nil {
			t.Fatalf("ParseSizeSpec(%q): %v", spec, err)
		}
		if got != want {
			t.Fatalf("ParseSizeSpec(%q) = %d, want %d", spec, got, want)
		}
	}
}

func TestParseSizeSpecRejectsInvalid(t *testing.T) {
	for _, spec := range []string{"", "abc", "-5MB", "0"} {
		if _, err := ParseSizeSpec(spec); err == nil {
			t.Fatalf("expected error for %q", spec)
		}
	}
}
