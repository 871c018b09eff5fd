// Package hocr parses hOCR output as produced by the Internet Archive's
// OCR pipeline: one document per book, one div.ocr_page per scanned page,
// one span.ocrx_word per recognized word. Geometry and confidence are
// encoded in the elements' title attributes.
package hocr

import (
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/inkbound/numberbook/internal/utils"
)

// Precompiled patterns for hOCR title attribute properties.
var (
	bboxRE       = regexp.MustCompile(`bbox (\d+) (\d+) (\d+) (\d+)`)
	confidenceRE = regexp.MustCompile(`x_wconf (\d+(?:\.\d+)?)`)
	imagePathRE  = regexp.MustCompile(`image "([^"]+)"`)
)

// Word is a single recognized word with its page geometry.
type Word struct {
	Text       string
	Box        utils.Box
	Confidence float64 // normalized to [0, 1]
}

// Page holds the words of one scanned page and the name of its raster image.
type Page struct {
	ImageName string
	Words     []Word
}

// ParseFile reads and parses an hOCR document from disk.
func ParseFile(p string) ([]Page, error) {
	f, err := os.Open(p) //nolint:gosec // G304: hOCR paths come from corpus discovery
	if err != nil {
		return nil, fmt.Errorf("open hocr file: %w", err)
	}
	defer func() { _ = f.Close() }()
	pages, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	return pages, nil
}

// Parse reads an hOCR document and returns its pages in document order.
// Words without a bounding box are dropped; words without a confidence
// value are kept with confidence 0.
func Parse(r io.Reader) ([]Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse hocr html: %w", err)
	}

	var pages []Page
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			if p, ok := parsePage(n); ok {
				pages = append(pages, p)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return pages, nil
}

func parsePage(n *html.Node) (Page, bool) {
	title := attr(n, "title")
	name := parseImageName(title)
	if name == "" {
		return Page{}, false
	}
	page := Page{ImageName: name}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocrx_word") {
			if w, ok := parseWord(n); ok {
				page.Words = append(page.Words, w)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return page, true
}

func parseWord(n *html.Node) (Word, bool) {
	text := strings.TrimSpace(textContent(n))
	if text == "" {
		return Word{}, false
	}
	title := attr(n, "title")
	box, ok := ParseBBox(title)
	if !ok {
		return Word{}, false
	}
	return Word{Text: text, Box: box, Confidence: ParseConfidence(title)}, true
}

// ParseBBox extracts bounding box coordinates from an hOCR title attribute.
func ParseBBox(title string) (utils.Box, bool) {
	m := bboxRE.FindStringSubmatch(title)
	if m == nil {
		return utils.Box{}, false
	}
	coords := make([]int, 4)
	for i, s := range m[1:] {
		v, err := strconv.Atoi(s)
		if err != nil {
			return utils.Box{}, false
		}
		coords[i] = v
	}
	return utils.NewBox(coords[0], coords[1], coords[2], coords[3]), true
}

// ParseConfidence extracts the x_wconf word confidence from an hOCR title
// attribute, normalized from the 0-100 scale to [0, 1]. Missing values
// yield 0.
func ParseConfidence(title string) float64 {
	m := confidenceRE.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v / 100.0
}

func parseImageName(title string) string {
	m := imagePathRE.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return path.Base(strings.ReplaceAll(m[1], `\`, `/`))
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
