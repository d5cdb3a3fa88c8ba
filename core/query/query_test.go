package query

import (
	"testing"

	"github.com/openlexica/liftcurator/core/errors"
	"github.com/openlexica/liftcurator/core/model"
	"github.com/openlexica/liftcurator/core/multitext"
)

func testEntry() *model.Entry {
	return &model.Entry{
		ID:          "cat_1",
		LexicalUnit: multitext.New("en", "cat", "fr", "chat"),
		Senses: []*model.Sense{
			{
				ID:              "s1",
				Glosses:         multitext.New("en", "feline"),
				Definitions:     multitext.New("en", "a small domesticated carnivore"),
				GrammaticalInfo: "Noun",
				Subsenses: []*model.Sense{
					{ID: "s1.1", Glosses: multitext.New("en", "house pet")},
				},
			},
		},
	}
}

func TestQueryMatch(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"lexeme equals", `lexeme = "cat"`, true},
		{"lexeme equals other language", `lexeme = "chat"`, true},
		{"lexeme no match", `lexeme = "dog"`, false},
		{"id equals", `id = "cat_1"`, true},
		{"sense id", `id = "s1"`, true},
		{"subsense gloss", `gloss = "house pet"`, true},
		{"gloss contains", `gloss contains "PET"`, true},
		{"definition contains", `definition contains "carnivore"`, true},
		{"grammatical info", `grammatical-info = "Noun"`, true},
		{"lang", `lang = "fr"`, true},
		{"not equals", `lexeme != "dog"`, true},
		{"not equals hit", `lexeme != "cat"`, false},
		{"and both hold", `lexeme = "cat" and grammatical-info = "Noun"`, true},
		{"and one fails", `lexeme = "cat" and grammatical-info = "Verb"`, false},
		{"or rescues", `lexeme = "dog" or gloss = "feline"`, true},
		{"and binds tighter than or", `lexeme = "dog" and lang = "en" or gloss = "feline"`, true},
	}

	e := testEntry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.expr, err)
			}
			if got := q.Match(e); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse(`flavor = "sweet"`)
	if err == nil {
		t.Fatal("unknown field should be rejected")
	}
	var pe *errors.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error = %T, want ParseError", err)
	}
}

func TestParseRejectsMalformedExpression(t *testing.T) {
	for _, expr := range []string{``, `lexeme =`, `= "cat"`, `lexeme ~ "cat"`, `lexeme = cat`} {
		if _, err := Parse(expr); err == nil {
			t.Errorf("Parse(%q) should fail", expr)
		}
	}
}

func TestMatchEmptyMultitexts(t *testing.T) {
	e := &model.Entry{ID: "bare_1", LexicalUnit: multitext.New("en", "bare")}
	q, err := Parse(`gloss contains "anything"`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if q.Match(e) {
		t.Error("entry without glosses should not match a gloss clause")
	}

	q, err = Parse(`citation != "x"`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !q.Match(e) {
		t.Error("!= over an empty field is vacuously true")
	}
}
