package document

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// defaultSeparators is the split cascade, coarsest first: paragraph
// break, line break, sentence punctuation, comma, space, character.
var defaultSeparators = []string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}

// Chunker splits document content into retrieval-sized overlapping
// segments. Chunking is a pure function of the content and the
// configured size/overlap, so re-chunking the same document always
// yields identical boundaries.
type Chunker struct {
	size    int
	overlap int
	logger  *zap.Logger
}

// NewChunker validates the configuration; overlap must be smaller than
// size, anything else is a caller bug.
func NewChunker(size, overlap int, logger *zap.Logger) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap (%d) must be in [0, chunk size %d)", overlap, size)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chunker{size: size, overlap: overlap, logger: logger}, nil
}

// Chunk fans a document out into ordered chunks. Every chunk carries a
// copy of the parent's fields with Content replaced by its slice,
// ChunkID assigned sequentially from 0 and ChunkCount set on all.
// Empty content yields an empty sequence with a warning, not an error.
func (c *Chunker) Chunk(doc Document) []Chunk {
	if strings.TrimSpace(doc.Content) == "" {
		c.logger.Warn("empty content, document produced no chunks",
			zap.String("source", doc.Source))
		return nil
	}

	pieces := c.split(doc.Content, defaultSeparators)
	chunks := make([]Chunk, len(pieces))
	for i, p := range pieces {
		d := doc
		d.Content = p
		chunks[i] = Chunk{Document: d, ChunkID: i, ChunkCount: len(pieces)}
	}
	return chunks
}

// split recursively breaks text on the coarsest separator present,
// descending to finer separators only for segments that still exceed
// the chunk size. Separators stay attached to the preceding segment so
// concatenating chunks (overlap removed) reproduces the source text.
func (c *Chunker) split(text string, seps []string) []string {
	if len(text) <= c.size {
		return []string{text}
	}

	sep, rest := pickSeparator(text, seps)
	if sep == "" {
		return c.forceSplit(text)
	}

	splits := splitAfter(text, sep)

	var final []string
	var fitting []string
	for _, s := range splits {
		if len(s) <= c.size {
			fitting = append(fitting, s)
			continue
		}
		if len(fitting) > 0 {
			final = append(final, c.merge(fitting)...)
			fitting = nil
		}
		final = append(final, c.split(s, rest)...)
	}
	if len(fitting) > 0 {
		final = append(final, c.merge(fitting)...)
	}
	return final
}

// merge packs adjacent segments into chunks of at most the configured
// size, retaining a tail of up to overlap characters when a new chunk
// opens.
func (c *Chunker) merge(splits []string) []string {
	var chunks []string
	var window []string
	total := 0

	for _, s := range splits {
		if total > 0 && total+len(s) > c.size {
			chunks = append(chunks, strings.Join(window, ""))
			for total > c.overlap || (total > 0 && total+len(s) > c.size) {
				total -= len(window[0])
				window = window[1:]
			}
		}
		window = append(window, s)
		total += len(s)
	}
	if total > 0 {
		chunks = append(chunks, strings.Join(window, ""))
	}
	return chunks
}

// forceSplit is the character-level fallback for text with no usable
// separator left.
func (c *Chunker) forceSplit(text string) []string {
	var out []string
	step := c.size - c.overlap
	for start := 0; start < len(text); start += step {
		end := start + c.size
		if end >= len(text) {
			out = append(out, text[start:])
			break
		}
		out = append(out, text[start:end])
	}
	return out
}

// pickSeparator returns the first separator of the cascade present in
// the text and the remaining finer separators.
func pickSeparator(text string, seps []string) (string, []string) {
	for i, sep := range seps {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, seps[i+1:]
		}
	}
	return "", nil
}

// splitAfter splits on sep keeping the separator attached to the
// preceding segment, dropping empty trailing segments.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
