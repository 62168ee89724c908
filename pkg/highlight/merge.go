package highlight

import (
	"sort"
	"strings"

	"github.com/gardar/ocrlens/pkg/ocrhl"
)

// Merger merges fragments that use a given pair of emphasis markers
type Merger struct {
	Open  string
	Close string
}

// Default uses the <em> markers emitted by Solr
var Default = Merger{Open: "<em>", Close: "</em>"}

// MergeField merges fragments into a raw value using the default markers
func MergeField(raw string, fragments []string) string {
	return Default.MergeField(raw, fragments)
}

// MergeDocument merges highlights into a document using the default markers
func MergeDocument(doc *ocrhl.Document, highlights ocrhl.FieldHighlights) *ocrhl.Document {
	return Default.MergeDocument(doc, highlights)
}

// span is a half-open byte interval of the raw value and its replacement
type span struct {
	start, end int
	text       string
}

// Strip removes the emphasis markers from a marked string
func (m Merger) Strip(marked string) string {
	return strings.NewReplacer(m.Open, "", m.Close, "").Replace(marked)
}

// MergeField wraps every occurrence of each fragment's unmarked text in raw.
//
// Occurrences are located in raw itself, never in partially merged output.
// An occurrence overlapping a span that is already marked in raw, a copy of
// a marked fragment already present in raw, or one accepted for an earlier
// fragment, is dropped. Every other occurrence is wrapped, including ones the
// backend did not mean to mark.
func (m Merger) MergeField(raw string, fragments []string) string {
	if len(fragments) == 0 || raw == "" {
		return raw
	}

	taken := m.markedSpans(raw)
	for _, frag := range fragments {
		if m.Strip(frag) != frag {
			taken = append(taken, occurrences(raw, frag, "")...)
		}
	}

	var accepted []span
	for _, frag := range fragments {
		needle := m.Strip(frag)
		if needle == "" || needle == frag {
			continue
		}
		for _, s := range occurrences(raw, needle, frag) {
			if !overlapsAny(s, taken) {
				taken = append(taken, s)
				accepted = append(accepted, s)
			}
		}
	}
	if len(accepted) == 0 {
		return raw
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	var b strings.Builder
	b.Grow(len(raw) + len(accepted)*(len(m.Open)+len(m.Close)))
	last := 0
	for _, s := range accepted {
		b.WriteString(raw[last:s.start])
		b.WriteString(s.text)
		last = s.end
	}
	b.WriteString(raw[last:])
	return b.String()
}

// MergeDocument merges highlights into every matching field of doc in place.
// Multi-valued fields are merged element-wise; fields without fragments and
// fragments for fields the document lacks are left alone.
func (m Merger) MergeDocument(doc *ocrhl.Document, highlights ocrhl.FieldHighlights) *ocrhl.Document {
	if doc == nil {
		return nil
	}
	for _, name := range doc.FieldNames() {
		frags, ok := highlights[name]
		if !ok || len(frags) == 0 {
			continue
		}
		value, _ := doc.Field(name)
		doc.SetField(name, value.Map(func(v string) string {
			return m.MergeField(v, frags)
		}))
	}
	return doc
}

// markedSpans returns the spans of raw that are already wrapped in markers
func (m Merger) markedSpans(raw string) []span {
	var spans []span
	for pos := 0; pos < len(raw); {
		i := strings.Index(raw[pos:], m.Open)
		if i < 0 {
			break
		}
		start := pos + i
		j := strings.Index(raw[start+len(m.Open):], m.Close)
		if j < 0 {
			break
		}
		end := start + len(m.Open) + j + len(m.Close)
		spans = append(spans, span{start: start, end: end})
		pos = end
	}
	return spans
}

// occurrences returns the non-overlapping spans of needle in raw, left to
// right, each carrying text as its replacement
func occurrences(raw, needle, text string) []span {
	var spans []span
	for pos := 0; pos <= len(raw)-len(needle); {
		i := strings.Index(raw[pos:], needle)
		if i < 0 {
			break
		}
		s := span{start: pos + i, end: pos + i + len(needle), text: text}
		spans = append(spans, s)
		pos = s.end
	}
	return spans
}

func overlapsAny(s span, spans []span) bool {
	for _, o := range spans {
		if s.start < o.end && o.start < s.end {
			return true
		}
	}
	return false
}
