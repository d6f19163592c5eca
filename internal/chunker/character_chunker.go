package chunker

import (
	"strconv"
	"strings"
	"unicode"

	"pdfqa/internal/domain"
)

// CharacterChunker splits text into fixed-size character windows with
// overlap, preferring to cut at whitespace near the window boundary so words
// stay intact.
type CharacterChunker struct {
	chunkSize    int
	chunkOverlap int
}

func NewCharacterChunker(chunkSize, chunkOverlap int) *CharacterChunker {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 120
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 4
		}
	}
	return &CharacterChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

func (c *CharacterChunker) Chunk(document domain.Document) ([]domain.Chunk, error) {
	runes := []rune(strings.TrimSpace(document.Content))
	if len(runes) == 0 {
		return nil, nil
	}
	var chunks []domain.Chunk
	idx := 0
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end >= len(runes) {
			end = len(runes)
		} else if cut := lastSpace(runes, start+c.chunkSize/2, end); cut > start {
			end = cut
		}
		text := strings.TrimSpace(string(runes[start:end]))
		if text != "" {
			chunks = append(chunks, domain.Chunk{
				DocumentID: document.ID,
				ChunkID:    document.ID + ":" + strconv.Itoa(idx),
				Text:       text,
				Index:      idx,
				Page:       document.Page,
				Source:     document.Source,
			})
			idx++
		}
		if end == len(runes) {
			break
		}
		start = end - c.chunkOverlap
		if start < 0 {
			start = 0
		}
	}
	return chunks, nil
}

// lastSpace returns the index of the last whitespace rune in [from, to),
// or -1 when there is none.
func lastSpace(runes []rune, from, to int) int {
	if from < 0 {
		from = 0
	}
	for i := to - 1; i >= from; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}
