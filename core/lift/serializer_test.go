package lift

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/openlexica/liftcurator/core/model"
	"github.com/openlexica/liftcurator/core/multitext"
)

// roundTrip asserts parse(serialize(parse(x))) == parse(x) for one fixture.
func roundTrip(t *testing.T, doc string) {
	t.Helper()
	first, err := ParseDocumentOpts([]byte(doc), fixedOptions())
	if err != nil {
		t.Fatalf("first parse failed: %v", err)
	}
	if len(first.Failures) > 0 {
		t.Fatalf("first parse failures: %+v", first.Failures)
	}
	out, err := Serialize(first.Entries, SerializeOptions{})
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	second, err := ParseDocumentOpts(out, fixedOptions())
	if err != nil {
		t.Fatalf("reparse failed: %v\noutput:\n%s", err, out)
	}
	if len(second.Failures) > 0 {
		t.Fatalf("reparse failures: %+v\noutput:\n%s", second.Failures, out)
	}
	if !reflect.DeepEqual(first.Entries, second.Entries) {
		t.Errorf("round-trip changed the model\nfirst:  %+v\nsecond: %+v\noutput:\n%s",
			first.Entries[0], second.Entries[0], out)
	}
}

func TestRoundTripFixtures(t *testing.T) {
	fixtures := map[string]string{
		"simple entry": simpleEntry,

		"multi-sense entry": `<lift><entry id="bank_1" guid="g-2" dateCreated="2023-01-01T00:00:00Z" dateModified="2023-01-01T00:00:00Z">
		  <lexical-unit><form lang="en"><text>bank</text></form></lexical-unit>
		  <sense id="s1"><gloss lang="en"><text>institution</text></gloss></sense>
		  <sense id="s2"><gloss lang="en"><text>river edge</text></gloss></sense>
		  <sense id="s3"><gloss lang="en"><text>tilt</text></gloss></sense>
		</entry></lift>`,

		"nested subsenses": `<lift><entry id="deep_1" guid="g-3" dateCreated="2023-01-01T00:00:00Z" dateModified="2023-01-01T00:00:00Z">
		  <lexical-unit><form lang="en"><text>deep</text></form></lexical-unit>
		  <sense id="l1"><gloss lang="en"><text>level one</text></gloss>
		    <subsense id="l2"><gloss lang="en"><text>level two</text></gloss>
		      <subsense id="l3"><gloss lang="en"><text>level three</text></gloss>
		        <subsense id="l4"><gloss lang="en"><text>level four</text></gloss>
		        </subsense>
		      </subsense>
		    </subsense>
		  </sense>
		</entry></lift>`,

		"etymology with comment and custom fields": `<lift><entry id="sugar_1" guid="g-4" dateCreated="2023-01-01T00:00:00Z" dateModified="2023-01-01T00:00:00Z">
		  <lexical-unit><form lang="en"><text>sugar</text></form></lexical-unit>
		  <etymology type="borrowed" source="ar">
		    <form lang="ar"><text>sukkar</text></form>
		    <gloss lang="en"><text>sweet</text></gloss>
		    <field type="comment"><form lang="en"><text>borrowed</text></form></field>
		    <field type="date"><form lang="en"><text>18th century</text></form></field>
		  </etymology>
		</entry></lift>`,

		"entry and sense annotations": `<lift><entry id="ann_1" guid="g-5" dateCreated="2023-01-01T00:00:00Z" dateModified="2023-01-01T00:00:00Z">
		  <lexical-unit><form lang="en"><text>annotated</text></form></lexical-unit>
		  <annotation name="flagged"/>
		  <annotation name="status" value="reviewed" who="editor" when="2023-02-01T09:00:00Z">
		    <form lang="en"><text>checked against corpus</text></form>
		  </annotation>
		  <sense id="s1">
		    <gloss lang="en"><text>marked</text></gloss>
		    <annotation name="confidence" value="low"/>
		  </sense>
		</entry></lift>`,

		"illustrations": `<lift><entry id="tree_1" guid="g-6" dateCreated="2023-01-01T00:00:00Z" dateModified="2023-01-01T00:00:00Z">
		  <lexical-unit><form lang="en"><text>tree</text></form></lexical-unit>
		  <sense id="s1">
		    <gloss lang="en"><text>tree</text></gloss>
		    <illustration href="tree.png"><label><form lang="en"><text>an oak</text></form></label></illustration>
		    <illustration href="bare.png"/>
		  </sense>
		</entry></lift>`,

		"pronunciation with cv-pattern and tone": `<lift><entry id="pron_1" guid="g-7" dateCreated="2023-01-01T00:00:00Z" dateModified="2023-01-01T00:00:00Z">
		  <lexical-unit><form lang="seh"><text>nyumba</text></form></lexical-unit>
		  <pronunciation>
		    <form lang="seh-fonipa"><text>ɲumba</text></form>
		    <media href="nyumba.wav"/>
		    <field type="cv-pattern"><form lang="en"><text>CVCCV</text></form></field>
		    <field type="tone"><form lang="en"><text>LH</text></form></field>
		  </pronunciation>
		</entry></lift>`,

		"variants relations notes reversals": `<lift><entry id="full_1" guid="g-8" dateCreated="2023-01-01T00:00:00Z" dateModified="2023-01-01T00:00:00Z">
		  <lexical-unit><form lang="en"><text>full</text></form></lexical-unit>
		  <citation><form lang="en"><text>full</text></form></citation>
		  <variant><form lang="en"><text>ful</text></form><trait name="dialect" value="archaic"/></variant>
		  <relation type="compare" ref="empty_1" order="0"/>
		  <relation type="compare" ref="filled_1" order="1"/>
		  <note type="usage"><form lang="en"><text>common</text></form></note>
		  <reversal type="pt"><form lang="pt"><text>cheio</text></form></reversal>
		  <trait name="morph-type" value="stem"/>
		  <sense id="s1">
		    <gloss lang="en"><text>filled</text></gloss>
		    <definition><form lang="en"><text>containing as much as possible</text></form></definition>
		    <example source="corpus"><form lang="en"><text>a full cup</text></form>
		      <translation type="Free"><form lang="pt"><text>um copo cheio</text></form></translation>
		    </example>
		    <reversal type="pt"><form lang="pt"><text>cheio</text></form></reversal>
		    <trait name="semantic-domain" value="8.1.8"/>
		  </sense>
		</entry></lift>`,
	}

	for name, doc := range fixtures {
		t.Run(name, func(t *testing.T) {
			roundTrip(t, doc)
		})
	}
}

// A sense nested four levels deep keeps exact depth and per-level glosses
// through a full cycle.
func TestRecursiveDepthFidelity(t *testing.T) {
	doc := `<lift><entry id="deep_1" guid="g" dateCreated="2023-01-01T00:00:00Z" dateModified="2023-01-01T00:00:00Z">
	  <lexical-unit><form lang="en"><text>deep</text></form></lexical-unit>
	  <sense id="l1"><gloss lang="en"><text>one</text></gloss>
	    <subsense id="l2"><gloss lang="en"><text>two</text></gloss>
	      <subsense id="l3"><gloss lang="en"><text>three</text></gloss>
	        <subsense id="l4"><gloss lang="en"><text>four</text></gloss></subsense>
	      </subsense>
	    </subsense>
	  </sense>
	</entry></lift>`
	first, err := ParseDocumentOpts([]byte(doc), fixedOptions())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	out, err := Serialize(first.Entries, SerializeOptions{})
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	second, err := ParseDocumentOpts(out, fixedOptions())
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}

	s := second.Entries[0].Senses[0]
	want := []string{"one", "two", "three", "four"}
	for depth, text := range want {
		if got, _ := s.Glosses.Get("en"); got != text {
			t.Fatalf("depth %d gloss = %q, want %q", depth+1, got, text)
		}
		if depth < len(want)-1 {
			if len(s.Subsenses) != 1 {
				t.Fatalf("depth %d has %d subsenses, want 1", depth+1, len(s.Subsenses))
			}
			s = s.Subsenses[0]
		}
	}
	if len(s.Subsenses) != 0 {
		t.Errorf("level four should be a leaf, has %d subsenses", len(s.Subsenses))
	}
}

func TestSerializeAlwaysNamespaced(t *testing.T) {
	first, err := ParseDocumentOpts([]byte(bareDoc), fixedOptions())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	out, err := Serialize(first.Entries, SerializeOptions{})
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "<lift:entry") || !strings.Contains(text, "xmlns:lift=") {
		t.Errorf("output should be namespace-prefixed:\n%s", text)
	}
	second, err := ParseDocumentOpts(out, fixedOptions())
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if second.Mode != ModeNamespaced {
		t.Errorf("reparsed mode = %v, want namespaced", second.Mode)
	}
}

// Stale stored sense orders are discarded at serialization time: whatever is
// in the list comes out numbered 0..n-1.
func TestSerializeRenormalizesOrders(t *testing.T) {
	e := &model.Entry{
		ID:          "x_1",
		GUID:        "g",
		LexicalUnit: multitext.New("en", "x"),
		Senses: []*model.Sense{
			{ID: "a", Order: 0, Glosses: multitext.New("en", "a")},
			{ID: "b", Order: 2, Glosses: multitext.New("en", "b")},
			{ID: "c", Order: 5, Glosses: multitext.New("en", "c")},
		},
	}
	out, err := Serialize([]*model.Entry{e}, SerializeOptions{})
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	second, err := ParseDocumentOpts(out, fixedOptions())
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	for i, s := range second.Entries[0].Senses {
		if s.Order != i {
			t.Errorf("sense[%d].Order = %d, want %d", i, s.Order, i)
		}
	}
	if len(second.Warnings) != 0 {
		t.Errorf("renormalized output should carry no stale orders; warnings: %+v", second.Warnings)
	}
}

// Setting a multitext field to empty and serializing must produce no
// corresponding element at all.
func TestSerializeOmitsEmptyOptionals(t *testing.T) {
	e := &model.Entry{
		ID:          "empty_1",
		GUID:        "g",
		LexicalUnit: multitext.New("en", "empty"),
		Etymologies: []*model.Etymology{{Type: "proto", Comment: &multitext.Text{}}},
		Senses: []*model.Sense{{
			ID:            "s1",
			Glosses:       multitext.New("en", "void"),
			Definitions:   &multitext.Text{},
			Illustrations: []*model.Illustration{{Href: ""}},
			Notes:         []*model.Note{{Type: "usage", Content: &multitext.Text{}}},
		}},
	}
	out, err := Serialize([]*model.Entry{e}, SerializeOptions{})
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	text := string(out)
	for _, forbidden := range []string{"<lift:definition", "<lift:note", "<lift:illustration", "<lift:field"} {
		if strings.Contains(text, forbidden) {
			t.Errorf("empty optional %s should be omitted:\n%s", forbidden, text)
		}
	}
}

func TestSerializeRefreshesDateModified(t *testing.T) {
	first, err := ParseDocumentOpts([]byte(simpleEntry), fixedOptions())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	editTime := time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)
	out, err := Serialize(first.Entries, SerializeOptions{Now: editTime})
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	second, err := ParseDocumentOpts(out, fixedOptions())
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	e := second.Entries[0]
	if e.DateModified != "2024-06-15T08:30:00Z" {
		t.Errorf("dateModified = %q, want refreshed edit time", e.DateModified)
	}
	if e.DateCreated != "2023-05-01T10:00:00Z" {
		t.Errorf("dateCreated = %q, must be carried through", e.DateCreated)
	}
	if e.GUID != first.Entries[0].GUID {
		t.Errorf("guid must be carried through")
	}
	// The serializer must not mutate its input.
	if first.Entries[0].DateModified != "2023-06-01T10:00:00Z" {
		t.Errorf("input entry mutated: %q", first.Entries[0].DateModified)
	}
}

func TestSerializeEntryFragment(t *testing.T) {
	e := &model.Entry{
		ID:          "frag_1",
		GUID:        "g",
		LexicalUnit: multitext.New("en", "fragment"),
	}
	out, err := SerializeEntry(e, SerializeOptions{})
	if err != nil {
		t.Fatalf("SerializeEntry failed: %v", err)
	}
	back, err := ParseEntryOpts(out, fixedOptions())
	if err != nil {
		t.Fatalf("reparse failed: %v\noutput:\n%s", err, out)
	}
	if back.ID != "frag_1" {
		t.Errorf("ID = %q", back.ID)
	}
}

func TestSerializeRejectsInvalidEntry(t *testing.T) {
	if _, err := Serialize([]*model.Entry{{ID: ""}}, SerializeOptions{}); err == nil {
		t.Error("entry without id should not serialize")
	}
	if _, err := Serialize([]*model.Entry{{ID: "x"}}, SerializeOptions{}); err == nil {
		t.Error("entry without lexical-unit should not serialize")
	}
}

func TestSerializeEscapesContent(t *testing.T) {
	e := &model.Entry{
		ID:          `odd "& <id>`,
		GUID:        "g",
		LexicalUnit: multitext.New("en", "a < b & c"),
	}
	out, err := Serialize([]*model.Entry{e}, SerializeOptions{})
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	back, err := ParseDocumentOpts(out, fixedOptions())
	if err != nil {
		t.Fatalf("reparse failed: %v\noutput:\n%s", err, out)
	}
	if back.Entries[0].ID != e.ID {
		t.Errorf("id = %q, want %q", back.Entries[0].ID, e.ID)
	}
	if got, _ := back.Entries[0].LexicalUnit.Get("en"); got != "a < b & c" {
		t.Errorf("text = %q", got)
	}
}
