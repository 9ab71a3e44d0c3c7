// Package catalog loads word lists and projects them for display and export.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/vocabdrill/internal/model"
)

const bom = "\uFEFF"

var (
	// ErrSourceUnavailable means the word file could not be read.
	ErrSourceUnavailable = errors.New("word source unavailable")
	// ErrSourceMalformed means the word file lacks the required columns.
	ErrSourceMalformed = errors.New("word source malformed")
)

// Load reads a tab-separated word file with a header row containing
// at least "word" and "meaning" columns.
func Load(path string) ([]model.WordEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	return Parse(file)
}

// Parse reads tab-separated records from r. Rows whose word is empty after
// trimming are dropped; duplicates are kept.
func Parse(r io.Reader) ([]model.WordEntry, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrSourceMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrSourceUnavailable, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	wordCol, meaningCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "word":
			if wordCol == -1 {
				wordCol = i
			}
		case "meaning":
			if meaningCol == -1 {
				meaningCol = i
			}
		}
	}
	if wordCol == -1 || meaningCol == -1 {
		return nil, fmt.Errorf("%w: header needs word and meaning columns, got %q", ErrSourceMalformed, header)
	}

	var entries []model.WordEntry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", ErrSourceUnavailable, err)
		}
		word := strings.TrimSpace(strings.TrimPrefix(field(record, wordCol), bom))
		if word == "" {
			continue
		}
		entries = append(entries, model.WordEntry{
			Word:    word,
			Meaning: strings.TrimSpace(field(record, meaningCol)),
		})
	}
	return entries, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
