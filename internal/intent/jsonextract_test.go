package intent

import "testing"

func TestFirstJSONObjectPlain(t *testing.T) {
	got := firstJSONObject(`{"domain":"page_component"}`)
	want := `{"domain":"page_component"}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFirstJSONObjectWithSurroundingProse(t *testing.T) {
	got := firstJSONObject("Sure, here you go:\n```json\n{\"domain\":\"atdw_import\",\"productNames\":[\"a\"]}\n```\nLet me know if that helps.")
	want := `{"domain":"atdw_import","productNames":["a"]}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFirstJSONObjectNestedBraces(t *testing.T) {
	got := firstJSONObject(`{"a":{"b":1}}`)
	want := `{"a":{"b":1}}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFirstJSONObjectBraceInString(t *testing.T) {
	got := firstJSONObject(`{"text":"a { stray brace"}`)
	want := `{"text":"a { stray brace"}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFirstJSONObjectNoObject(t *testing.T) {
	if got := firstJSONObject("no json here"); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestFirstJSONObjectUnclosed(t *testing.T) {
	if got := firstJSONObject(`{"domain":"page_component"`); got != "" {
		t.Errorf("expected empty string for unclosed object, got %q", got)
	}
}
