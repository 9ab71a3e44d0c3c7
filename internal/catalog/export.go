package catalog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/vocabdrill/internal/model"
)

// Format is an export file format.
type Format string

// Supported export formats.
const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Sheet1"

// ErrNothingToExport is returned for empty selections.
var ErrNothingToExport = errors.New("nothing to export")

// FormatFromPath picks the export format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "csv":
		return FormatCSV, nil
	case "tsv", "txt":
		return FormatTSV, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export extension %q (want .csv, .tsv or .xlsx)", filepath.Ext(path))
}

// Write serializes entries with a word/meaning header. CSV output starts
// with a UTF-8 byte-order mark so spreadsheet tools detect the encoding.
func Write(w io.Writer, entries []model.WordEntry, format Format) error {
	if len(entries) == 0 {
		return ErrNothingToExport
	}
	switch format {
	case FormatXLSX:
		return writeXLSX(w, entries)
	case FormatCSV, FormatTSV:
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}

	buf := bufio.NewWriter(w)
	writer := csv.NewWriter(buf)
	if format == FormatCSV {
		if _, err := buf.WriteString(bom); err != nil {
			return err
		}
	} else {
		writer.Comma = '\t'
	}
	if err := writer.Write([]string{"word", "meaning"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writer.Write([]string{e.Word, e.Meaning}); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buf.Flush()
}

func writeXLSX(w io.Writer, entries []model.WordEntry) error {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the in-memory workbook.
			_ = cerr
		}
	}()
	if err := f.SetSheetRow(sheetName, "A1", &[]interface{}{"word", "meaning"}); err != nil {
		return err
	}
	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]interface{}{e.Word, e.Meaning}); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// ExportFile writes entries to path, choosing the format from its extension.
// The file is replaced atomically.
func ExportFile(path string, entries []model.WordEntry) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ErrNothingToExport
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "export-*")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := Write(tmpFile, entries, format); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
