package ingest

import (
	"strings"
	"unicode/utf8"
)

// Separators ordered from "best" to "worst" for semantic meaning.
// The empty separator falls back to single characters.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// textSplitter cuts text into windows of at most size runes. Consecutive windows
// of the same text share up to overlap runes.
type textSplitter struct {
	size    int
	overlap int
}

func newTextSplitter(size int, overlap int) textSplitter {
	if overlap >= size {
		overlap = size / 2
	}
	return textSplitter{size: size, overlap: overlap}
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func (s textSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	// If text is already small enough, just return it
	if runeLen(text) <= s.size {
		return []string{text}
	}
	return s.split(text, separators)
}

func (s textSplitter) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var finer []string
	for i, candidate := range seps {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			finer = seps[i+1:]
			break
		}
	}

	var chunks []string
	var fitting []string
	for _, piece := range splitKeepingSeparator(text, sep) {
		if runeLen(piece) < s.size {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			chunks = append(chunks, s.merge(fitting)...)
			fitting = nil
		}
		if len(finer) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, finer)...)
		}
	}
	if len(fitting) > 0 {
		chunks = append(chunks, s.merge(fitting)...)
	}
	return chunks
}

// merge packs small pieces into windows, carrying the tail of each window
// into the next one as overlap.
func (s textSplitter) merge(pieces []string) []string {
	var chunks []string
	var current []string
	total := 0

	for _, piece := range pieces {
		l := runeLen(piece)
		if total+l > s.size && len(current) > 0 {
			if chunk := joinPieces(current); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > s.overlap || (total+l > s.size && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += l
	}

	if chunk := joinPieces(current); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func joinPieces(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

// the separator stays attached to the start of the piece that follows it
func splitKeepingSeparator(text string, sep string) []string {
	if sep == "" {
		pieces := make([]string, 0, runeLen(text))
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}
