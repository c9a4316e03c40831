package search

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// Query is a parsed free-text search
type Query struct {
	// Text is the trimmed input
	Text  string
	Lower string
	// Year is the first 1900-2099 year in the text, 0 when there is none
	Year     int
	YearText string
	// Residual is Text with every occurrence of YearText removed
	Residual string
}

// Empty reports whether there is nothing to search for
func (q Query) Empty() bool {
	return q.Text == ""
}

// HasYear reports whether a year was extracted
func (q Query) HasYear() bool {
	return q.Year != 0
}

// ContainsAny reports whether the lowercased query contains one of keywords
func (q Query) ContainsAny(keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(q.Lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// ParseQuery trims text and extracts at most one year from it
func ParseQuery(text string) Query {
	q := Query{Text: strings.TrimSpace(text)}
	q.Lower = strings.ToLower(q.Text)
	q.Residual = q.Text

	if year, s, ok := ExtractYear(q.Text); ok {
		q.Year = year
		q.YearText = s
		q.Residual = strings.TrimSpace(strings.ReplaceAll(q.Text, s, ""))
	}
	return q
}

// ExtractYear returns the first standalone four digit year between 1900 and
// 2099. Digits glued to letters, digits or underscores do not count, so
// "F2021" and "12021" yield nothing.
func ExtractYear(text string) (int, string, bool) {
	for _, loc := range yearPattern.FindAllStringIndex(text, -1) {
		if !isBoundary(text, loc[0], loc[1]) {
			continue
		}
		s := text[loc[0]:loc[1]]
		year, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		return year, s, true
	}
	return 0, "", false
}

func isBoundary(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
