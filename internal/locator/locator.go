// Package locator scans OCR tokens for integers in a target range and
// emits extraction candidates. Locating numbers is best-effort against
// noisy OCR: tokens that do not parse are skipped, never errors.
package locator

import (
	"sort"
	"strings"

	"github.com/inkbound/numberbook/internal/corpus"
)

// TextForm describes how a candidate's value appeared on the page.
type TextForm string

const (
	FormDigits   TextForm = "digits"
	FormCardinal TextForm = "cardinal"
	FormOrdinal  TextForm = "ordinal"
)

// formWeight orders interpretations of the same region: a literal digit
// sequence is more trustworthy than a word reading, which beats an
// ordinal reading. Confidence stays an opaque comparable score.
var formWeight = map[TextForm]float64{
	FormDigits:   1.0,
	FormCardinal: 0.95,
	FormOrdinal:  0.85,
}

// Candidate is a hypothesis that a page region depicts a given integer.
type Candidate struct {
	Value      int
	Region     corpus.SourceRegion
	TextForm   TextForm
	Confidence float64
}

// Locator detects number candidates on OCR pages.
type Locator struct {
	maxNumber     int
	minConfidence float64
	gapThreshold  int
}

// New returns a Locator for values in [0, maxNumber]. Tokens whose OCR
// confidence is below minConfidence are ignored; adjacent number words
// within gapThreshold pixels are merged into phrases.
func New(maxNumber int, minConfidence float64, gapThreshold int) *Locator {
	return &Locator{
		maxNumber:     maxNumber,
		minConfidence: minConfidence,
		gapThreshold:  gapThreshold,
	}
}

// Locate returns all candidates found on a page, one per surviving
// interpretation, with overlapping same-region duplicates resolved to
// the highest-confidence reading.
func (l *Locator) Locate(page corpus.Page) []Candidate {
	var cands []Candidate
	cands = append(cands, l.tokenCandidates(page)...)
	cands = append(cands, l.phraseCandidates(page)...)
	return resolveOverlaps(cands)
}

// tokenCandidates parses each token on its own.
func (l *Locator) tokenCandidates(page corpus.Page) []Candidate {
	var cands []Candidate
	for _, tok := range page.Tokens {
		if tok.Confidence < l.minConfidence {
			continue
		}
		for _, in := range interpret(Normalize(tok.Text)) {
			if in.value < 0 || in.value > l.maxNumber {
				continue
			}
			cands = append(cands, Candidate{
				Value:      in.value,
				Region:     corpus.SourceRegion{BookID: page.BookID, PageIndex: page.PageIndex, Box: tok.Box},
				TextForm:   in.form,
				Confidence: tok.Confidence * formWeight[in.form],
			})
		}
	}
	return cands
}

// phraseCandidates merges runs of adjacent number words ("fifty
// thousand") into a single candidate spanning the union of their boxes.
func (l *Locator) phraseCandidates(page corpus.Page) []Candidate {
	var cands []Candidate
	var run []corpus.Token

	flush := func() {
		if len(run) >= 2 {
			if c, ok := l.parseRun(page, run); ok {
				cands = append(cands, c)
			}
		}
		run = run[:0]
	}

	for _, tok := range page.Tokens {
		norm := Normalize(tok.Text)
		if tok.Confidence < l.minConfidence || !isNumberWord(norm) {
			flush()
			continue
		}
		if len(run) > 0 && !l.adjacent(run[len(run)-1], tok) {
			flush()
		}
		run = append(run, tok)
	}
	flush()
	return cands
}

func (l *Locator) parseRun(page corpus.Page, run []corpus.Token) (Candidate, bool) {
	words := make([]string, len(run))
	box := run[0].Box
	conf := run[0].Confidence
	for i, tok := range run {
		words[i] = Normalize(tok.Text)
		box = box.Union(tok.Box)
		if tok.Confidence < conf {
			conf = tok.Confidence
		}
	}
	v, ok := parseCardinalWords(words)
	if !ok || v < 0 || v > l.maxNumber {
		return Candidate{}, false
	}
	return Candidate{
		Value:      v,
		Region:     corpus.SourceRegion{BookID: page.BookID, PageIndex: page.PageIndex, Box: box},
		TextForm:   FormCardinal,
		Confidence: conf * formWeight[FormCardinal],
	}, true
}

// adjacent reports whether b continues a on the same text line within
// the configured horizontal gap.
func (l *Locator) adjacent(a, b corpus.Token) bool {
	if b.Box.X0 < a.Box.X0 {
		return false
	}
	if a.Box.HorizontalGap(b.Box) > l.gapThreshold {
		return false
	}
	minH := min(a.Box.Height(), b.Box.Height())
	return a.Box.VerticalOverlap(b.Box)*2 >= minH
}

// interpretation is one reading of a normalized token.
type interpretation struct {
	value int
	form  TextForm
}

// interpret returns every plausible reading of a normalized token.
func interpret(s string) []interpretation {
	if s == "" {
		return nil
	}
	var out []interpretation
	if v, ok := parseDigits(s); ok {
		out = append(out, interpretation{v, FormDigits})
	}
	if v, ok := parseOrdinalDigits(s); ok {
		out = append(out, interpretation{v, FormOrdinal})
	}
	words := strings.Split(s, "-")
	if v, ok := parseCardinalWords(words); ok {
		out = append(out, interpretation{v, FormCardinal})
	} else if c, ok := ordinalToCardinal(words[len(words)-1]); ok {
		words[len(words)-1] = c
		if v, ok := parseCardinalWords(words); ok {
			out = append(out, interpretation{v, FormOrdinal})
		}
	}
	return out
}

// parseDigits parses a literal digit sequence. Multi-digit strings with
// a leading zero are OCR noise ("007", "00"), not numbers.
func parseDigits(s string) (int, bool) {
	if s == "" || len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	v := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		v = v*10 + int(r-'0')
		if v > 1_000_000 {
			return 0, false
		}
	}
	return v, true
}

// parseOrdinalDigits parses forms like "1st", "22nd", "50th".
func parseOrdinalDigits(s string) (int, bool) {
	if len(s) < 3 {
		return 0, false
	}
	suffix := s[len(s)-2:]
	switch suffix {
	case "st", "nd", "rd", "th":
		return parseDigits(s[:len(s)-2])
	}
	return 0, false
}

// Normalize case-folds a token and strips surrounding punctuation.
func Normalize(s string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(s)), `.,;:!?'"()[]{}*`)
}

// resolveOverlaps drops candidates that claim the same region as a
// higher-confidence one. Ties break by form weight and then by value so
// results are stable for a given page.
func resolveOverlaps(cands []Candidate) []Candidate {
	if len(cands) < 2 {
		return cands
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Confidence != cands[j].Confidence {
			return cands[i].Confidence > cands[j].Confidence
		}
		wi, wj := formWeight[cands[i].TextForm], formWeight[cands[j].TextForm]
		if wi != wj {
			return wi > wj
		}
		return cands[i].Value < cands[j].Value
	})

	kept := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		duplicate := false
		for _, k := range kept {
			if c.Value != k.Value && c.Region.Box.IoU(k.Region.Box) >= 0.9 {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, c)
		}
	}
	return kept
}
