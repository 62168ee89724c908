package highlight

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/ocrlens/pkg/ocrhl"
)

func TestMergeField(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		fragments []string
		want      string
	}{
		{
			name:      "single occurrence",
			raw:       "The quick brown fox",
			fragments: []string{"<em>quick</em>"},
			want:      "The <em>quick</em> brown fox",
		},
		{
			name:      "every occurrence is wrapped",
			raw:       "ab ab ab",
			fragments: []string{"<em>ab</em>"},
			want:      "<em>ab</em> <em>ab</em> <em>ab</em>",
		},
		{
			name:      "whole-value fragment",
			raw:       "Geschichte des Landes Luxemburg",
			fragments: []string{"Geschichte des <em>Landes</em> Luxemburg"},
			want:      "Geschichte des <em>Landes</em> Luxemburg",
		},
		{
			name:      "not found contributes nothing",
			raw:       "Straße",
			fragments: []string{"<em>Strasse</em>"},
			want:      "Straße",
		},
		{
			name:      "first fragment wins on overlap",
			raw:       "new york city",
			fragments: []string{"<em>new york</em>", "<em>york city</em>"},
			want:      "<em>new york</em> city",
		},
		{
			name:      "subset of earlier span is not wrapped twice",
			raw:       "new york",
			fragments: []string{"<em>new york</em>", "<em>york</em>"},
			want:      "<em>new york</em>",
		},
		{
			name:      "later fragment still wraps distinct occurrences",
			raw:       "york and new york",
			fragments: []string{"<em>new york</em>", "<em>york</em>"},
			want:      "<em>york</em> and <em>new york</em>",
		},
		{
			name:      "already marked spans are protected",
			raw:       "<em>fox</em> and fox",
			fragments: []string{"<em>fox</em>"},
			want:      "<em>fox</em> and <em>fox</em>",
		},
		{
			name:      "context of a whole-value fragment is not re-matched",
			raw:       "The quick fox",
			fragments: []string{"The <em>quick</em> fox", "<em>fox</em>"},
			want:      "The <em>quick</em> fox",
		},
		{
			name:      "marked fragment already present is protected",
			raw:       "The <em>quick</em> fox and a fox",
			fragments: []string{"The <em>quick</em> fox", "<em>fox</em>"},
			want:      "The <em>quick</em> fox and a <em>fox</em>",
		},
		{
			name:      "fragment without markers is ignored",
			raw:       "plain text",
			fragments: []string{"plain"},
			want:      "plain text",
		},
		{
			name:      "empty fragment is ignored",
			raw:       "plain text",
			fragments: []string{"<em></em>"},
			want:      "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeField(tt.raw, tt.fragments))
		})
	}
}

func TestMergeField_EmptyFragmentsIsIdentity(t *testing.T) {
	for _, raw := range []string{"", "x", "a <em>b</em> c", "ünïcödé text"} {
		assert.Equal(t, raw, MergeField(raw, nil))
		assert.Equal(t, raw, MergeField(raw, []string{}))
	}
}

func TestMergeField_RestUnchanged(t *testing.T) {
	raw := "Once upon a time in Luxembourg there was a newspaper."
	got := MergeField(raw, []string{"<em>Luxembourg</em>"})

	i := strings.Index(raw, "Luxembourg")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, raw[:i], got[:i])
	assert.True(t, strings.HasSuffix(got, raw[i+len("Luxembourg"):]))
	assert.Equal(t, raw, Default.Strip(got))
}

func TestMergeField_Idempotent(t *testing.T) {
	cases := []struct {
		raw  string
		frag []string
	}{
		{"ab ab ab", []string{"<em>ab</em>"}},
		{"The quick fox", []string{"The <em>quick</em> fox"}},
		{"new york and york", []string{"<em>new york</em>", "<em>york</em>"}},
		{"The quick fox", []string{"The <em>quick</em> fox", "<em>fox</em>"}},
		{"The quick fox and a fox", []string{"The <em>quick</em> fox", "<em>fox</em>"}},
		{"a fox, the quick fox", []string{"<em>fox</em>", "the <em>quick</em> fox"}},
	}
	for _, c := range cases {
		once := MergeField(c.raw, c.frag)
		twice := MergeField(once, c.frag)
		assert.Equal(t, once, twice, c.raw)
	}
}

func TestMergeDocument(t *testing.T) {
	doc := ocrhl.NewDocument("d1", "gbooks")
	doc.SetField("title", ocrhl.Single("History of Luxembourg"))
	doc.SetField("author", ocrhl.Multiple("Jean Luxembourg", "Someone Else"))
	doc.SetField("publisher", ocrhl.Single("Luxembourg Press"))

	MergeDocument(doc, ocrhl.FieldHighlights{
		"title":   {"History of <em>Luxembourg</em>"},
		"author":  {"<em>Luxembourg</em>"},
		"missing": {"<em>x</em>"},
	})

	assert.Equal(t, "History of <em>Luxembourg</em>", doc.First("title"))
	author, _ := doc.Field("author")
	assert.True(t, author.Multi)
	assert.Equal(t, []string{"Jean <em>Luxembourg</em>", "Someone Else"}, author.Values)
	assert.Equal(t, "Luxembourg Press", doc.First("publisher"))
	_, ok := doc.Field("missing")
	assert.False(t, ok)
}

func TestMergeDocument_NilInputs(t *testing.T) {
	assert.Nil(t, MergeDocument(nil, ocrhl.FieldHighlights{"a": {"<em>a</em>"}}))

	doc := ocrhl.NewDocument("d", "")
	doc.SetField("title", ocrhl.Single("same"))
	MergeDocument(doc, nil)
	assert.Equal(t, "same", doc.First("title"))
}

func TestCustomMarkers(t *testing.T) {
	m := Merger{Open: "[[", Close: "]]"}
	assert.Equal(t, "a [[b]] c", m.MergeField("a b c", []string{"[[b]]"}))
}
