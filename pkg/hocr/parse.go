package hocr

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrNoPages is returned when a document has no ocr_page element
var ErrNoPages = errors.New("no ocr_page elements found in hOCR data")

var charsetPattern = regexp.MustCompile(`(?i)charset=["']?([A-Za-z0-9_-]+)`)

// lineClasses are the hOCR classes treated as text lines
var lineClasses = []string{"ocr_line", "ocr_header", "ocr_caption", "ocr_textfloat"}

// ParseFile reads and parses an hOCR file
func ParseFile(path string) (*HOCR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hOCR file: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse converts raw hOCR data into a structured HOCR object
func Parse(data []byte) (*HOCR, error) {
	decoded, err := decode(data)
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("error parsing hOCR HTML: %w", err)
	}

	result := &HOCR{Metadata: make(map[string]string)}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "html":
				if lang := getAttrVal(n, "lang"); lang != "" {
					result.Language = lang
				}
			case n.Data == "title" && n.FirstChild != nil:
				result.Title = strings.TrimSpace(n.FirstChild.Data)
			case n.Data == "meta":
				readMeta(result, n)
			case hasClass(n, "ocr_page"):
				result.Pages = append(result.Pages, processPage(n, len(result.Pages)+1))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	if len(result.Pages) == 0 {
		return result, ErrNoPages
	}
	return result, nil
}

// decode converts legacy single-byte encodings declared in the document to UTF-8
func decode(data []byte) ([]byte, error) {
	head := data
	if len(head) > 2048 {
		head = head[:2048]
	}
	m := charsetPattern.FindSubmatch(head)
	if m == nil {
		return data, nil
	}

	var enc encoding.Encoding
	switch strings.ToLower(string(m[1])) {
	case "iso-8859-1", "latin1", "latin-1":
		enc = charmap.ISO8859_1
	case "iso-8859-15":
		enc = charmap.ISO8859_15
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	default:
		return data, nil
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", m[1], err)
	}
	return decoded, nil
}

func readMeta(result *HOCR, n *html.Node) {
	name := getAttrVal(n, "name")
	content := getAttrVal(n, "content")
	if name == "" || content == "" {
		return
	}
	switch {
	case strings.HasPrefix(name, "DC.") || strings.HasPrefix(name, "dc."):
		if strings.EqualFold(name, "dc.language") && result.Language == "" {
			result.Language = content
		}
		result.DublinCore = append(result.DublinCore, MetaEntry{Name: name[3:], Value: content})
	case strings.HasPrefix(name, "ocr-"):
		result.Metadata[name] = content
	}
}

// ParseTitle breaks down an hOCR title attribute into its components
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// ParseBoundingBoxFromTitle extracts a bounding box from a title string
// Returns nil if the title has no complete bbox property
func ParseBoundingBoxFromTitle(title string) *BoundingBox {
	bbox, ok := ParseTitle(title)["bbox"]
	if !ok || len(bbox) < 4 {
		return nil
	}
	var coords [4]float64
	for i := range coords {
		v, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil {
			return nil
		}
		coords[i] = v
	}
	result := NewBoundingBox(coords[0], coords[1], coords[2], coords[3])
	return &result
}

// processPage extracts page attributes and every line below it.
// seq is the 1-based position of the page in the document.
func processPage(n *html.Node, seq int) Page {
	page := Page{
		ID:         getAttrVal(n, "id"),
		Lang:       getAttrVal(n, "lang"),
		PageNumber: seq,
	}

	title := getAttrVal(n, "title")
	if bbox := ParseBoundingBoxFromTitle(title); bbox != nil {
		page.BBox = *bbox
	}
	props := ParseTitle(title)
	if image, ok := props["image"]; ok && len(image) > 0 {
		page.ImageName = strings.Trim(strings.Join(image, " "), `"`)
	}
	if ppageno, ok := props["ppageno"]; ok && len(ppageno) > 0 {
		if no, err := strconv.Atoi(ppageno[0]); err == nil {
			page.PageNumber = no + 1
		}
	} else if no, ok := pageNumberFromID(page.ID); ok {
		page.PageNumber = no
	}

	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.ElementNode && isLine(c) {
			page.Lines = append(page.Lines, processLine(c))
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			collect(cc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c)
	}
	return page
}

// pageNumberFromID reads the trailing number of ids like "page_12"
func pageNumberFromID(id string) (int, bool) {
	i := strings.LastIndexAny(id, "_-")
	if i < 0 || i == len(id)-1 {
		return 0, false
	}
	no, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0, false
	}
	return no, true
}

// processLine extracts line information and its words
func processLine(n *html.Node) Line {
	line := Line{ID: getAttrVal(n, "id")}
	if bbox := ParseBoundingBoxFromTitle(getAttrVal(n, "title")); bbox != nil {
		line.BBox = *bbox
	}

	var extractWords func(*html.Node)
	extractWords = func(c *html.Node) {
		if c.Type == html.ElementNode && hasClass(c, "ocrx_word") {
			line.Words = append(line.Words, processWord(c))
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			extractWords(cc)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractWords(c)
	}
	return line
}

// processWord extracts a word's text and properties
func processWord(n *html.Node) Word {
	word := Word{ID: getAttrVal(n, "id")}
	title := getAttrVal(n, "title")
	if bbox := ParseBoundingBoxFromTitle(title); bbox != nil {
		word.BBox = *bbox
	}
	if conf, ok := ParseTitle(title)["x_wconf"]; ok && len(conf) > 0 {
		word.Confidence, _ = strconv.ParseFloat(conf[0], 64)
	}
	word.Text = extractTextContent(n)
	return word
}

// extractTextContent gets all text from a node and its children
func extractTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(extractTextContent(c))
	}
	return strings.TrimSpace(b.String())
}

func isLine(n *html.Node) bool {
	for _, class := range lineClasses {
		if hasClass(n, class) {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Get the value of a specific attribute from a node
func getAttrVal(n *html.Node, attrName string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrName {
			return attr.Val
		}
	}
	return ""
}
