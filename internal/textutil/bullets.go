package textutil

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

const minTokenRunes = 3

// Fingerprint counts the tokens of one piece of text.
type Fingerprint map[string]float64

// NewFingerprint returns nil when text has no token of at least three runes.
func NewFingerprint(text string) Fingerprint {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	fp := make(Fingerprint, len(tokens))
	for _, tok := range tokens {
		fp[tok]++
	}
	return fp
}

// Tokenize lowercases text and splits it on anything that is not a letter or
// digit. Short tokens are dropped.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenRunes {
			out = append(out, f)
		}
	}
	return out
}

func (f Fingerprint) norm() float64 {
	var sum float64
	for _, n := range f {
		sum += n * n
	}
	return math.Sqrt(sum)
}

// Similarity is the cosine of the angle between a and b, 0 when either is empty.
func Similarity(a, b Fingerprint) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for tok, n := range a {
		dot += n * b[tok]
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm() * b.norm())
}

// NearDuplicate reports whether candidate repeats an entry of list, either
// case-insensitively or with Similarity at or above threshold.
func NearDuplicate(list []string, candidate string, threshold float64) bool {
	candidate = strings.TrimSpace(candidate)
	fp := NewFingerprint(candidate)
	for _, existing := range list {
		existing = strings.TrimSpace(existing)
		if strings.EqualFold(existing, candidate) {
			return true
		}
		if fp != nil && Similarity(fp, NewFingerprint(existing)) >= threshold {
			return true
		}
	}
	return false
}

// SanitizeToken lowercases value for use in a file name. Letters, digits,
// hyphens and underscores survive; every other rune becomes an underscore.
// Leading and trailing separators are trimmed and an empty result is "unknown".
func SanitizeToken(value string) string {
	token := strings.Map(func(r rune) rune {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return unicode.ToLower(r)
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(value))
	if token = strings.Trim(token, "_-"); token == "" {
		return "unknown"
	}
	return token
}
