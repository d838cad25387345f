package services

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	pdf "github.com/ledongthuc/pdf"
)

// TextExtractor pulls plain text out of stored resource bytes.
type TextExtractor interface {
	Extract(fileName, mimeType string, data []byte) (string, error)
}

type docTextExtractor struct{}

func NewTextExtractor() TextExtractor { return docTextExtractor{} }

// Extract sniffs the bytes first and trusts the declared type second.
// Supported: PDF and plain text.
func (docTextExtractor) Extract(fileName, mimeType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file: name=%s mime=%s", fileName, mimeType)
	}
	if isPDF(data) {
		return extractPDF(data)
	}
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if strings.HasPrefix(mt, "text/") || isProbablyText(data) {
		return collapseWhitespace(string(data)), nil
	}
	if mt == "application/pdf" || strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return "", fmt.Errorf("file claims pdf but missing %%PDF header: name=%s head=%x", fileName, data[:min(len(data), 16)])
	}
	return "", fmt.Errorf("unsupported file type: name=%s mime=%s", fileName, mimeType)
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isProbablyText(b []byte) bool {
	sample := b[:min(len(b), 4096)]
	good := 0
	for _, c := range sample {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
			good++
		}
	}
	return float64(good)/float64(len(sample)) > 0.9
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse panic: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf reader: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return collapseWhitespace(string(b)), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// usableText reports whether extracted text has enough letters to be worth
// summarizing. Scanned PDFs often yield a handful of stray glyphs.
func usableText(s string, minLetters int) bool {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
			if n >= minLetters {
				return true
			}
		}
	}
	return false
}

// truncateRunes cuts s to at most n runes on a word boundary when possible.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return cut
}
