package engine

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AEBus/ffxiv-venues-dalamud/internal/config"
)

// Venue-supplied strings are untrusted and frequently "styled" with Unicode
// confusables (small capitals, mathematical alphanumerics) that render as
// tofu in most fonts. Normalize rewrites them back to plain ASCII letters.

// smallCapsMap maps Unicode small-capital codepoints to their ASCII
// uppercase equivalent. A hit anywhere in the string triggers title-casing
// of the whole result, on the assumption the name was written in stylized
// all-small-caps.
var smallCapsMap = map[rune]rune{
	0x1D00: 'A',
	0x0299: 'B',
	0x1D04: 'C',
	0x1D05: 'D',
	0x1D07: 'E',
	0xA730: 'F',
	0x0262: 'G',
	0x029C: 'H',
	0x026A: 'I',
	0x1D0A: 'J',
	0x1D0B: 'K',
	0x029F: 'L',
	0x1D0D: 'M',
	0x0274: 'N',
	0x1D0F: 'O',
	0x1D18: 'P',
	0x01EB: 'Q',
	0x0280: 'R',
	0x1D1B: 'T',
	0x1D1C: 'U',
	0x1D20: 'V',
	0x1D21: 'W',
	0x028F: 'Y',
	0x1D22: 'Z',
}

// specialMap covers a handful of script-style letters that appear in venue
// names but sit outside the contiguous mathematical ranges.
var specialMap = map[rune]rune{
	0x210E:  'h',
	0x2113:  'l',
	0x1D70A: 'o',
	0x1D70B: 'o',
	0x1D710: 'u',
}

// mathRanges covers the contiguous mathematical-alphanumeric blocks
// (bold, italic, bold italic, sans-serif, sans-serif bold) mapped back to
// ASCII by offset from each range start.
var mathRanges = []struct {
	lo, hi rune
	base   rune
}{
	{0x1D400, 0x1D419, 'A'},
	{0x1D41A, 0x1D433, 'a'},
	{0x1D434, 0x1D44D, 'A'},
	{0x1D44E, 0x1D467, 'a'},
	{0x1D63C, 0x1D655, 'A'},
	{0x1D656, 0x1D66F, 'a'},
	{0x1D608, 0x1D621, 'A'},
	{0x1D622, 0x1D63B, 'a'},
	{0x1D5D4, 0x1D5ED, 'A'},
	{0x1D5EE, 0x1D607, 'a'},
}

var titleCaser = cases.Title(language.Und)

// Normalize rewrites Unicode confusables in text to their ASCII equivalent.
// Two invisible separator codepoints (U+A9C1, U+A9C2) are dropped outright.
// If any small-capital letter was rewritten, the entire result is lowercased
// and then title-cased, even when only part of the string used small caps.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var builder strings.Builder
	builder.Grow(len(text))
	hadSmallCaps := false

	for _, r := range text {
		if r == 0xA9C1 || r == 0xA9C2 {
			continue
		}

		if mapped, ok := smallCapsMap[r]; ok {
			builder.WriteRune(mapped)
			hadSmallCaps = true
			continue
		}

		if mapped, ok := specialMap[r]; ok {
			builder.WriteRune(mapped)
			continue
		}

		if mapped, ok := mapMathRange(r); ok {
			builder.WriteRune(mapped)
			continue
		}

		builder.WriteRune(r)
	}

	normalized := builder.String()
	if hadSmallCaps {
		normalized = titleCaser.String(strings.ToLower(normalized))
	}
	return normalized
}

func mapMathRange(r rune) (rune, bool) {
	for _, rng := range mathRanges {
		if r >= rng.lo && r <= rng.hi {
			return rng.base + (r - rng.lo), true
		}
	}
	return 0, false
}

var (
	htmlTagRegex      = regexp.MustCompile(`<.*?>`)
	markdownLinkRegex = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	// Go's regexp has no backreferences, so each markdown delimiter pair
	// gets its own expression, strongest first so ** is not eaten as two *.
	markdownStrongRegexes = []*regexp.Regexp{
		regexp.MustCompile(`\*\*(.*?)\*\*`),
		regexp.MustCompile(`__(.*?)__`),
		regexp.MustCompile(`~~(.*?)~~`),
	}
	markdownEmRegexes = []*regexp.Regexp{
		regexp.MustCompile(`\*(.*?)\*`),
		regexp.MustCompile(`_(.*?)_`),
	}
	decorationLineRegex = regexp.MustCompile("^[=\\-_*`~|+\\\\/]+$")
)

// Sanitize cleans one untrusted description paragraph for display: it
// normalizes confusables, strips HTML-tag-shaped substrings and markdown
// syntax, drops box-drawing characters and control characters, and removes
// decoration-only lines. Blank lines survive as paragraph breaks.
func Sanitize(paragraph string) string {
	if strings.TrimSpace(paragraph) == "" {
		return ""
	}

	text := Normalize(paragraph)
	text = htmlTagRegex.ReplaceAllString(text, "")
	text = markdownLinkRegex.ReplaceAllString(text, "$1")
	for _, re := range markdownStrongRegexes {
		text = re.ReplaceAllString(text, "$1")
	}
	for _, re := range markdownEmRegexes {
		text = re.ReplaceAllString(text, "$1")
	}
	text = strings.ReplaceAll(text, "`", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" {
			cleaned = append(cleaned, "")
			continue
		}

		var buf strings.Builder
		buf.Grow(len(trimmed))
		for _, r := range trimmed {
			// Box-drawing and block-element glyphs used for chat-frame art.
			if r >= 0x2500 && r <= 0x259F {
				continue
			}
			if r != '\t' && (r < 0x20 || (r >= 0x7F && r <= 0x9F)) {
				continue
			}
			buf.WriteRune(r)
		}

		finished := strings.TrimSpace(buf.String())
		if finished == "" {
			continue
		}
		if len(finished) > config.DecorationLineMinLength && decorationLineRegex.MatchString(finished) {
			continue
		}
		cleaned = append(cleaned, finished)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
