package services

import (
	"strings"
	"unicode/utf8"
)

type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText packs paragraphs into chunks of at most maxChunkSize runes.
// Oversized paragraphs are split on sentence boundaries, and each new chunk
// repeats the last overlap runes of the previous one.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)

	flush := func() {
		chunks = append(chunks, current.String())
		current.Reset()
		size = 0
		if tail := lastRunes(chunks[len(chunks)-1], overlap); tail != "" {
			current.WriteString(tail)
			size = utf8.RuneCountInString(tail)
		}
	}

	add := func(piece, sep string) {
		n, s := utf8.RuneCountInString(piece), utf8.RuneCountInString(sep)
		if size > 0 && size+s+n > maxChunkSize {
			flush()
			// Drop the overlap when it would push the piece over the limit.
			if size+s+n > maxChunkSize {
				current.Reset()
				size = 0
			}
		}
		if size > 0 {
			current.WriteString(sep)
			size += s
		}
		current.WriteString(piece)
		size += n
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) <= maxChunkSize {
			add(para, "\n\n")
			continue
		}

		for _, sentence := range splitIntoSentences(para) {
			for _, piece := range splitRunes(sentence, maxChunkSize) {
				add(piece, " ")
			}
		}
	}

	if size > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitIntoSentences keeps the terminating punctuation with its sentence.
func splitIntoSentences(text string) []string {
	var (
		result []string
		start  int
	)
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(text[start : i+utf8.RuneLen(r)]); s != "" {
				result = append(result, s)
			}
			start = i + utf8.RuneLen(r)
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		result = append(result, s)
	}
	return result
}

// splitRunes cuts s into pieces of at most n runes.
func splitRunes(s string, n int) []string {
	if n <= 0 {
		n = 1
	}
	runes := []rune(s)
	if len(runes) <= n {
		return []string{s}
	}
	var out []string
	for len(runes) > 0 {
		end := n
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[:end]))
		runes = runes[end:]
	}
	return out
}

func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
