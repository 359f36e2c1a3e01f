// Package splitter cuts extracted document text into overlapping chunks
// bounded by a token budget, splitting preferentially at paragraph, then
// line, then sentence, then word boundaries.
package splitter

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const (
	DefaultChunkSize    = 300
	DefaultChunkOverlap = 50

	// tokenizerEncoding must match the encoding of the embedding model so
	// chunk sizing stays reproducible across runs.
	tokenizerEncoding = "cl100k_base"
)

// defaultSeparators order boundary preference: paragraph, line, sentence
// punctuation, comma, word.
var defaultSeparators = []string{"\n\n", "\n", ".", "!", "?", ",", " "}

// LengthFunc measures text in the unit the chunk budget is expressed in.
type LengthFunc func(text string) int

// TokenLength returns a LengthFunc counting cl100k_base tokens.
func TokenLength() (LengthFunc, error) {
	enc, err := tiktoken.GetEncoding(tokenizerEncoding)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding failed: %w", tokenizerEncoding, err)
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}

// Splitter recursively splits text at the coarsest boundary that yields
// pieces under the chunk budget, then merges pieces into chunks with overlap.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
	length       LengthFunc
}

func New(chunkSize, chunkOverlap int, length LengthFunc) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 6
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
		length:       length,
	}
}

// Split returns the ordered chunks of text. Every chunk measures at most the
// chunk budget under the splitter's length function.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	pieces, rest := s.cut(text, separators)

	var chunks []string
	var pending []string
	flush := func() {
		chunks = append(chunks, s.merge(pending)...)
		pending = pending[:0]
	}

	for _, piece := range pieces {
		if s.length(piece) <= s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		// Oversized piece: emit what we have, then recurse with finer
		// separators (or hard-split when none remain).
		flush()
		if len(rest) > 0 {
			chunks = append(chunks, s.split(piece, rest)...)
		} else {
			chunks = append(chunks, s.hardSplit(piece)...)
		}
	}
	flush()
	return chunks
}

// cut splits text on the first separator it contains, keeping the separator
// attached to the preceding piece. Returns the pieces and the finer
// separators left for recursion.
func (s *Splitter) cut(text string, separators []string) ([]string, []string) {
	for i, sep := range separators {
		if !strings.Contains(text, sep) {
			continue
		}
		parts := strings.Split(text, sep)
		pieces := make([]string, 0, len(parts))
		for j, part := range parts {
			if j < len(parts)-1 {
				part += sep
			}
			if part != "" {
				pieces = append(pieces, part)
			}
		}
		return pieces, separators[i+1:]
	}
	return []string{text}, nil
}

// merge joins consecutive pieces into chunks up to the budget, carrying a
// token-bounded tail of each chunk into the next for overlap.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var window []string
	total := 0

	for _, piece := range pieces {
		l := s.length(piece)
		if total+l > s.chunkSize && len(window) > 0 {
			if c := strings.TrimSpace(strings.Join(window, "")); c != "" {
				chunks = append(chunks, c)
			}
			for len(window) > 0 && (total > s.chunkOverlap || total+l > s.chunkSize) {
				total -= s.length(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += l
	}
	if c := strings.TrimSpace(strings.Join(window, "")); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}

// hardSplit bisects text until every part fits the budget. Last resort for
// runs with no separator at all.
func (s *Splitter) hardSplit(text string) []string {
	if s.length(text) <= s.chunkSize {
		return []string{text}
	}
	runes := []rune(text)
	if len(runes) < 2 {
		return []string{text}
	}
	mid := len(runes) / 2
	out := s.hardSplit(string(runes[:mid]))
	return append(out, s.hardSplit(string(runes[mid:]))...)
}
