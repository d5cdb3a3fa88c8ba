package encoding

import "testing"

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text", "headword", "headword"},
		{"ampersand", "salt & pepper", "salt &amp; pepper"},
		{"less than", "a < b", "a &lt; b"},
		{"greater than", "a > b", "a &gt; b"},
		{"quotes", `a "gloss"`, "a &#34;gloss&#34;"},
		{"apostrophe", "cat's", "cat&#39;s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeXML(tt.input); got != tt.want {
				t.Errorf("EscapeXML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscapeXMLText(t *testing.T) {
	got := EscapeXMLText(`<gloss lang="en"> & more`)
	want := `&lt;gloss lang="en"&gt; &amp; more`
	if got != want {
		t.Errorf("EscapeXMLText = %q, want %q", got, want)
	}
}

func TestEscapeXMLAttr(t *testing.T) {
	got := EscapeXMLAttr(`say "cat" & <run>`)
	want := `say &quot;cat&quot; &amp; &lt;run&gt;`
	if got != want {
		t.Errorf("EscapeXMLAttr = %q, want %q", got, want)
	}
}
