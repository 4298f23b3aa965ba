package query

import "testing"

func TestSanitizeLikeInputStripsEscapeChars(t *testing.T) {
	cases := map[string]string{
		`Sydney "Harbour" Tour`: "Sydney Harbour Tour",
		`100% Adventure\Co`:     "100 AdventureCo",
		"plain name":            "plain name",
	}
	for in, want := range cases {
		if got := sanitizeLikeInput(in); got != want {
			t.Errorf("sanitizeLikeInput(%q) = %q, want %q", in, got, want)
		}
	}
}
