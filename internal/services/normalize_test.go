package services

import (
	"testing"

	"github.com/truevow/truevow/internal/catalog"
)

func TestNormalizeMultipleChoiceByPosition(t *testing.T) {
	q := &catalog.Question{
		ID: 1, Section: "Foundation", Type: catalog.TypeMultipleChoice,
		Weight: 10, Options: []string{"A", "B", "C"},
	}
	for i, opt := range q.Options {
		v, err := NormalizeResponse(q, opt)
		if err != nil {
			t.Fatalf("normalize %q: %v", opt, err)
		}
		if v != i+1 {
			t.Fatalf("value for %q = %d, want %d", opt, v, i+1)
		}
	}
	if _, err := NormalizeResponse(q, "D"); !IsCode(err, ErrorInvalidResponse) {
		t.Fatalf("unknown option: got %v, want invalid_response", err)
	}
}

func TestNormalizeDeclarationAllOrNothing(t *testing.T) {
	q := &catalog.Question{
		ID: 2, Section: "Foundation", Type: catalog.TypeDeclaration, Weight: 12,
		Options: []string{"I commit to X", catalog.AntithesisMarker},
	}
	v, err := NormalizeResponse(q, "I commit to X")
	if err != nil || v != 12 {
		t.Fatalf("affirmative = (%d, %v), want (12, nil)", v, err)
	}
	v, err = NormalizeResponse(q, catalog.AntithesisMarker)
	if err != nil || v != 0 {
		t.Fatalf("antithesis = (%d, %v), want (0, nil)", v, err)
	}
	if _, err := NormalizeResponse(q, "maybe"); !IsCode(err, ErrorInvalidResponse) {
		t.Fatalf("unlisted option: got %v, want invalid_response", err)
	}
}

func TestNormalizeInputNeverScored(t *testing.T) {
	q := &catalog.Question{ID: 3, Section: "Foundation", Type: catalog.TypeInput}
	v, err := NormalizeResponse(q, "anything at all")
	if err != nil || v != 0 {
		t.Fatalf("input = (%d, %v), want (0, nil)", v, err)
	}
}

func TestNormalizeNilQuestion(t *testing.T) {
	if _, err := NormalizeResponse(nil, "A"); !IsCode(err, ErrorInvalidResponse) {
		t.Fatalf("nil question: got %v, want invalid_response", err)
	}
}

func TestParseQuestionKey(t *testing.T) {
	cases := map[string]int{"12": 12, "Q7": 7, "q3": 3, " 42 ": 42}
	for in, want := range cases {
		got, err := ParseQuestionKey(in)
		if err != nil || got != want {
			t.Fatalf("ParseQuestionKey(%q) = (%d, %v), want (%d, nil)", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "Qx", "-3", "0", "twelve"} {
		if _, err := ParseQuestionKey(bad); err == nil {
			t.Fatalf("ParseQuestionKey(%q): expected error", bad)
		}
	}
}

func TestNormalizeGender(t *testing.T) {
	if got := NormalizeGender("  Male "); got != "male" {
		t.Fatalf("NormalizeGender = %q, want male", got)
	}
}
