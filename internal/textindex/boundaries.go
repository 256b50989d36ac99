package textindex

import (
	"strings"
	"unicode"

	"github.com/dshills/docspan/internal/document"
)

// abbreviations are words whose trailing period does not end a sentence.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "vs": true, "etc": true, "inc": true,
	"ltd": true, "corp": true, "co": true, "st": true, "ave": true,
	"blvd": true, "rd": true, "apt": true, "no": true, "vol": true,
	"pg": true, "pp": true, "jan": true, "feb": true, "mar": true,
	"apr": true, "jun": true, "jul": true, "aug": true, "sep": true,
	"oct": true, "nov": true, "dec": true, "fig": true, "eg": true,
	"ie": true, "cf": true, "al": true, "ed": true, "rev": true,
	"gen": true, "gov": true, "sen": true, "rep": true, "hon": true,
	"col": true, "maj": true, "capt": true, "lt": true, "sgt": true,
	"pvt": true, "est": true, "approx": true,
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// isSentenceEnd reports whether the punctuation at pos genuinely ends a
// sentence. Periods after abbreviations, single letters, and digits do
// not; `!` and `?` count when followed by whitespace or text end.
func isSentenceEnd(text []rune, pos int) bool {
	if pos < 0 || pos >= len(text) {
		return false
	}
	c := text[pos]
	if c == '!' || c == '?' {
		if pos+1 >= len(text) {
			return true
		}
		return isSpace(text[pos+1])
	}
	if c != '.' {
		return false
	}
	if pos+1 >= len(text) {
		return true
	}
	if !isSpace(text[pos+1]) {
		return false
	}

	wordStart := pos
	for wordStart > 0 && unicode.IsLetter(text[wordStart-1]) {
		wordStart--
	}
	word := strings.ToLower(string(text[wordStart:pos]))
	if abbreviations[word] {
		return false
	}
	// Single-letter abbreviations: "A. Smith", "J.D."
	if len(word) == 1 {
		return false
	}
	// Numeric patterns: "1.", "2.5"
	if wordStart > 0 && unicode.IsDigit(text[wordStart-1]) {
		return false
	}
	// Ellipsis ends a sentence only before whitespace or text end.
	if pos >= 2 && text[pos-2] == '.' && text[pos-1] == '.' {
		if pos+1 >= len(text) {
			return true
		}
		return isSpace(text[pos+1])
	}
	return true
}

// sentenceEnds returns the logical positions one past each sentence end,
// trailing spaces and tabs included.
func sentenceEnds(text []rune) []int {
	var out []int
	for i, c := range text {
		if (c == '.' || c == '!' || c == '?') && isSentenceEnd(text, i) {
			end := i + 1
			for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
				end++
			}
			out = append(out, end)
		}
	}
	return out
}

// SentenceBounds returns the document range of the sentence containing
// the offset. Without a detectable boundary the sentence extends to the
// text edges.
func (ix *Index) SentenceBounds(offset int) document.Range {
	if len(ix.runes) == 0 {
		return document.Range{Start: offset, End: offset + 1}
	}
	pos := ix.boundedPos(offset)
	ends := sentenceEnds(ix.runes)

	start := 0
	for _, e := range ends {
		if e <= pos {
			start = e
		} else {
			break
		}
	}
	end := len(ix.runes)
	for _, e := range ends {
		if e > pos {
			end = e
			break
		}
	}
	return ix.docRange(start, end, offset)
}

// LineBounds returns the document range of the line containing the
// offset, including the terminating newline.
func (ix *Index) LineBounds(offset int) document.Range {
	if len(ix.runes) == 0 {
		return document.Range{Start: offset, End: offset + 1}
	}
	pos := ix.boundedPos(offset)

	start := 0
	for i := pos - 1; i >= 0; i-- {
		if ix.runes[i] == '\n' {
			start = i + 1
			break
		}
	}
	end := len(ix.runes)
	for i := pos; i < len(ix.runes); i++ {
		if ix.runes[i] == '\n' {
			end = i + 1
			break
		}
	}
	return ix.docRange(start, end, offset)
}

// boundedPos is logicalPos clamped inside the text.
func (ix *Index) boundedPos(offset int) int {
	pos := ix.logicalPos(offset)
	if pos >= len(ix.runes) {
		pos = len(ix.runes) - 1
	}
	return pos
}

// docRange maps a logical [start, end) span back to document offsets.
func (ix *Index) docRange(start, end, fallback int) document.Range {
	if start >= len(ix.offsets) {
		start = len(ix.offsets) - 1
	}
	if end > len(ix.offsets) {
		end = len(ix.offsets)
	}
	r := document.Range{Start: fallback, End: fallback + 1}
	if start >= 0 && start < len(ix.offsets) {
		r.Start = ix.offsets[start]
	}
	if end > 0 && end <= len(ix.offsets) {
		r.End = ix.offsets[end-1] + 1
	}
	return r
}
