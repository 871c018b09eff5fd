package locator

import "strings"

// unitWords maps cardinal words below twenty to their values.
var unitWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
	"nineteen": 19,
}

// tensWords maps the tens words to their values.
var tensWords = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// irregularOrdinals maps ordinal words with no mechanical cardinal stem.
var irregularOrdinals = map[string]string{
	"first":   "one",
	"second":  "two",
	"third":   "three",
	"fifth":   "five",
	"eighth":  "eight",
	"ninth":   "nine",
	"twelfth": "twelve",
}

// isNumberWord reports whether w can participate in a cardinal phrase.
func isNumberWord(w string) bool {
	if _, ok := unitWords[w]; ok {
		return true
	}
	if _, ok := tensWords[w]; ok {
		return true
	}
	return w == "zero" || w == "hundred" || w == "thousand" || w == "and"
}

// ordinalToCardinal rewrites an ordinal word to its cardinal form:
// "fiftieth" -> "fifty", "fourth" -> "four", "second" -> "two".
func ordinalToCardinal(w string) (string, bool) {
	if c, ok := irregularOrdinals[w]; ok {
		return c, true
	}
	if s, ok := strings.CutSuffix(w, "ieth"); ok {
		return s + "y", true
	}
	if s, ok := strings.CutSuffix(w, "th"); ok && s != "" {
		return s, true
	}
	return "", false
}

// parseCardinalWords interprets a sequence of number words as a single
// integer using standard English grouping ("fifty thousand", "one
// hundred and five"). A lone scale word parses to its own value so that
// "hundred" and "thousand" fragments can be harvested for composition.
func parseCardinalWords(words []string) (int, bool) {
	if len(words) == 0 {
		return 0, false
	}
	if words[0] == "zero" {
		if len(words) != 1 {
			return 0, false
		}
		return 0, true
	}

	total, current := 0, 0
	seen := false
	for i, w := range words {
		switch {
		case w == "and":
			// Connector inside a phrase only ("one hundred and five").
			if i == 0 || i == len(words)-1 {
				return 0, false
			}
		case unitWords[w] != 0:
			// Reject doubled units like "five three".
			if current%10 != 0 && unitWords[w] < 10 {
				return 0, false
			}
			current += unitWords[w]
			seen = true
		case tensWords[w] != 0:
			if current%100 != 0 {
				return 0, false
			}
			current += tensWords[w]
			seen = true
		case w == "hundred":
			if current == 0 {
				current = 1
			}
			if current > 99 {
				return 0, false
			}
			current *= 100
			seen = true
		case w == "thousand":
			if total > 0 {
				return 0, false
			}
			if current == 0 {
				current = 1
			}
			total = current * 1000
			current = 0
			seen = true
		default:
			return 0, false
		}
	}
	if !seen {
		return 0, false
	}
	return total + current, true
}
