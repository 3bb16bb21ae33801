package content

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocabsrs/pkg/models"
)

// ImportConfig maps spreadsheet columns to word fields.
type ImportConfig struct {
	FilePath            string // path to the .xlsx or .csv file
	WordColumn          string // column with the word
	TranslationColumn   string // column with the translation
	ExampleColumn       string // column with example usage
	TopicColumn         string // column with the topic
	DifficultyColumn    string // column with the 1-5 difficulty hint
	PronunciationColumn string // column with the pronunciation
	SheetName           string // sheet to import from
	StartRow            int    // first data row, 1-based
}

// DefaultImportConfig returns the conventional column layout.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:          "A",
		TranslationColumn:   "B",
		ExampleColumn:       "C",
		TopicColumn:         "D",
		DifficultyColumn:    "E",
		PronunciationColumn: "F",
		SheetName:           "Sheet1",
		StartRow:            2, // skip the header row
	}
}

// ImportResult summarizes one import run.
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Importer loads vocabulary from spreadsheet files into the repository.
type Importer struct {
	repo *Repository
}

// NewImporter creates an Importer over the repository.
func NewImporter(repo *Repository) *Importer {
	return &Importer{repo: repo}
}

// Import loads words from the configured file. The format is chosen by
// extension: .csv is parsed as CSV, everything else as Excel.
func (im *Importer) Import(ctx context.Context, cfg ImportConfig) (*ImportResult, error) {
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		return im.importCSV(ctx, cfg)
	}
	return im.importExcel(ctx, cfg)
}

func (im *Importer) importExcel(ctx context.Context, cfg ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("content: open %s: %w", cfg.FilePath, err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("content: read sheet %q: %w", cfg.SheetName, err)
	}

	result := &ImportResult{}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		im.importRow(ctx, cfg, row, rowNum, result)
	}
	return result, nil
}

func (im *Importer) importCSV(ctx context.Context, cfg ImportConfig) (*ImportResult, error) {
	f, err := os.Open(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("content: open %s: %w", cfg.FilePath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	result := &ImportResult{}
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("content: read csv %s: %w", cfg.FilePath, err)
		}
		rowNum++
		if rowNum < cfg.StartRow {
			continue
		}
		im.importRow(ctx, cfg, row, rowNum, result)
	}
	return result, nil
}

func (im *Importer) importRow(ctx context.Context, cfg ImportConfig, row []string, rowNum int, result *ImportResult) {
	result.TotalProcessed++

	wordText := cellValue(row, cfg.WordColumn)
	translation := cellValue(row, cfg.TranslationColumn)
	if wordText == "" || translation == "" {
		result.Skipped++
		return
	}

	difficulty := 1
	if raw := cellValue(row, cfg.DifficultyColumn); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 || d > 5 {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: bad difficulty %q", rowNum, raw))
		} else {
			difficulty = d
		}
	}

	word := models.Word{
		Word:          wordText,
		Translation:   translation,
		Example:       cellValue(row, cfg.ExampleColumn),
		Topic:         cellValue(row, cfg.TopicColumn),
		Difficulty:    difficulty,
		Pronunciation: cellValue(row, cfg.PronunciationColumn),
	}
	_, created, err := im.repo.Upsert(ctx, word)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
		return
	}
	if created {
		result.Created++
	} else {
		result.Updated++
	}
}

// cellValue reads a cell by column letter, tolerating short rows.
func cellValue(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx, err := excelize.ColumnNameToNumber(column)
	if err != nil || idx < 1 || idx > len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx-1])
}
