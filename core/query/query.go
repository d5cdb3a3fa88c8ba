// Package query implements the small filter language used to select entries
// from a lexicon, e.g.
//
//	lexeme = "cat"
//	gloss contains "run" and grammatical-info = "Verb"
//	id = "cat_1" or id = "dog_1"
//
// Clauses test one field against a quoted string; "and" binds tighter than
// "or". Values are matched against every candidate the field yields (every
// language of a multitext, every sense of an entry), so a clause holds when
// any candidate matches.
package query

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/openlexica/liftcurator/core/errors"
	"github.com/openlexica/liftcurator/core/model"
	"github.com/openlexica/liftcurator/core/multitext"
)

// Fields a clause may test.
const (
	FieldID          = "id"
	FieldLexeme      = "lexeme"
	FieldCitation    = "citation"
	FieldGloss       = "gloss"
	FieldDefinition  = "definition"
	FieldGrammatical = "grammatical-info"
	FieldLang        = "lang"
)

var validFields = map[string]bool{
	FieldID:          true,
	FieldLexeme:      true,
	FieldCitation:    true,
	FieldGloss:       true,
	FieldDefinition:  true,
	FieldGrammatical: true,
	FieldLang:        true,
}

// queryGrammar is the participle grammar for filter expressions.
//
//nolint:govet // participle grammar tags are not standard struct tags
type queryGrammar struct {
	Or []*andExpr `@@ ( "or" @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type andExpr struct {
	Clauses []*clause `@@ ( "and" @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type clause struct {
	Field string `@Ident`
	Op    string `@( "=" | "!=" | "contains" )`
	Value string `@String`
}

var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9_-]*`},
	{Name: "Op", Pattern: `!?=`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var queryParser = participle.MustBuild[queryGrammar](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

// Query is a compiled filter expression.
type Query struct {
	ast *queryGrammar
}

// Parse compiles a filter expression. Unknown fields and malformed syntax
// are rejected here, not at match time.
func Parse(s string) (*Query, error) {
	ast, err := queryParser.ParseString("", s)
	if err != nil {
		return nil, &errors.ParseError{Format: "query", Message: err.Error(), Err: err}
	}
	for _, and := range ast.Or {
		for _, c := range and.Clauses {
			if !validFields[c.Field] {
				return nil, errors.NewParse("query", "", "unknown field "+c.Field)
			}
		}
	}
	return &Query{ast: ast}, nil
}

// Match reports whether the entry satisfies the expression.
func (q *Query) Match(e *model.Entry) bool {
	for _, and := range q.ast.Or {
		if matchAnd(and, e) {
			return true
		}
	}
	return false
}

func matchAnd(and *andExpr, e *model.Entry) bool {
	for _, c := range and.Clauses {
		if !matchClause(c, e) {
			return false
		}
	}
	return true
}

func matchClause(c *clause, e *model.Entry) bool {
	candidates := fieldValues(c.Field, e)
	switch c.Op {
	case "=":
		for _, v := range candidates {
			if v == c.Value {
				return true
			}
		}
		return false
	case "!=":
		for _, v := range candidates {
			if v == c.Value {
				return false
			}
		}
		return true
	case "contains":
		needle := strings.ToLower(c.Value)
		for _, v := range candidates {
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	}
	return false
}

// fieldValues yields every candidate string the field exposes on the entry,
// descending into subsenses for sense-level fields.
func fieldValues(field string, e *model.Entry) []string {
	switch field {
	case FieldID:
		ids := []string{e.ID}
		walkSenses(e.Senses, func(s *model.Sense) {
			ids = append(ids, s.ID)
		})
		return ids
	case FieldLexeme:
		return textValues(e.LexicalUnit)
	case FieldCitation:
		return textValues(e.CitationForm)
	case FieldLang:
		return e.LexicalUnit.Langs()
	case FieldGloss:
		var out []string
		walkSenses(e.Senses, func(s *model.Sense) {
			out = append(out, textValues(s.Glosses)...)
		})
		return out
	case FieldDefinition:
		var out []string
		walkSenses(e.Senses, func(s *model.Sense) {
			out = append(out, textValues(s.Definitions)...)
		})
		return out
	case FieldGrammatical:
		var out []string
		walkSenses(e.Senses, func(s *model.Sense) {
			if s.GrammaticalInfo != "" {
				out = append(out, s.GrammaticalInfo)
			}
		})
		return out
	}
	return nil
}

func walkSenses(list []*model.Sense, fn func(*model.Sense)) {
	for _, s := range list {
		fn(s)
		walkSenses(s.Subsenses, fn)
	}
}

func textValues(t *multitext.Text) []string {
	if t.IsEmpty() {
		return nil
	}
	forms := t.Entries()
	out := make([]string, len(forms))
	for i, f := range forms {
		out[i] = f.Text
	}
	return out
}
