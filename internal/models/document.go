package models

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// MinTextThreshold is the minimum trimmed length for a document to be parseable.
	MinTextThreshold = 50
	// SuccessThreshold is the trimmed length above which a PDF method stops the chain.
	SuccessThreshold = 100
)

type ExtractionMethod string

const (
	MethodStructured ExtractionMethod = "structured"
	MethodGeneric    ExtractionMethod = "generic"
	MethodOCR        ExtractionMethod = "ocr"
)

// RawDocument is the uploaded file as received. It is never mutated.
type RawDocument struct {
	Data      []byte
	Extension string
	Filename  string
}

// NewRawDocument derives the declared extension from filename.
func NewRawDocument(data []byte, filename string) RawDocument {
	return RawDocument{
		Data:      data,
		Extension: ExtensionOf(filename),
		Filename:  filename,
	}
}

// ExtensionOf returns the lowercased extension of filename without the dot.
func ExtensionOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

type ExtractedText struct {
	Text      string           `json:"text"`
	Method    ExtractionMethod `json:"methodUsed"`
	CharCount int              `json:"charCount"`
}

func NewExtractedText(text string, method ExtractionMethod) ExtractedText {
	return ExtractedText{
		Text:      text,
		Method:    method,
		CharCount: utf8.RuneCountInString(text),
	}
}

// TrimmedLen is the rune length of text without surrounding whitespace.
func TrimmedLen(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}

// Parseable reports whether the text carries enough signal to structure.
func (e ExtractedText) Parseable() bool {
	return TrimmedLen(e.Text) >= MinTextThreshold
}

var mimeTypes = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"doc":  "application/msword",
	"txt":  "text/plain",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// MimeType maps a declared extension to its content type.
func MimeType(ext string) string {
	if m, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return m
	}
	return "application/octet-stream"
}

// IsImage reports whether ext can only be read through OCR.
func IsImage(ext string) bool {
	switch strings.ToLower(ext) {
	case "jpg", "jpeg", "png":
		return true
	}
	return false
}
