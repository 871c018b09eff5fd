package composer

// Tokens returns the canonical decomposition of a value into token
// values using standard English numeral grouping. Each token is itself
// a value the fragment store may hold: digits 0-9, teens and twenty,
// the tens words (30, 40, ... 90), and the scale words 100 and 1000.
//
// The thousands multiplier appears as a single token (the full 1-999
// value), so composing 23000 requires the image for 23, which the
// ascending composition order resolves before 23000 is attempted.
//
// A value whose decomposition is itself alone is primitive: it cannot
// be built from anything smaller and must be extracted directly.
func Tokens(v int) []int {
	if v <= 20 || v == 100 || v == 1000 {
		return []int{v}
	}

	var toks []int
	if th := v / 1000; th > 0 {
		toks = append(toks, th, 1000)
	}
	r := v % 1000
	if h := r / 100; h > 0 {
		toks = append(toks, h, 100)
	}
	tu := r % 100
	switch {
	case tu == 0:
	case tu <= 20:
		toks = append(toks, tu)
	default:
		toks = append(toks, tu/10*10)
		if u := tu % 10; u > 0 {
			toks = append(toks, u)
		}
	}
	return toks
}

// Primitive reports whether v has no decomposition into smaller tokens.
func Primitive(v int) bool {
	t := Tokens(v)
	return len(t) == 1 && t[0] == v
}
