package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"

	"vocabdrill/internal/models"
	"vocabdrill/internal/repository"
	"vocabdrill/internal/validation"
)

// ImportService loads vocabulary lists from JSON payloads and uploaded
// spreadsheet files
type ImportService struct {
	semesters *repository.SemesterRepository
	words     *repository.WordRepository
}

// NewImportService creates an import service
func NewImportService(semesters *repository.SemesterRepository, words *repository.WordRepository) *ImportService {
	return &ImportService{semesters: semesters, words: words}
}

// ImportResult summarizes one import run
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Column aliases accepted in JSON keys and spreadsheet headers. Imports
// come from many hand-made files, so short and long forms both work.
var (
	wordAliases      = []string{"w", "word", "wordtext"}
	phoneticAliases  = []string{"p", "phonetic", "phonetictext"}
	meaningAliases   = []string{"m", "meaning", "meaningtext"}
	exampleEnAliases = []string{"ex", "exampleen", "example_en", "example"}
	exampleCnAliases = []string{"exc", "examplecn", "example_cn", "examplecntext"}
)

// ImportJSON imports an array of word objects into a semester
func (s *ImportService) ImportJSON(semesterID int64, data []byte) (*ImportResult, error) {
	if err := s.checkSemester(semesterID); err != nil {
		return nil, err
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, validation.Errorf("failed to parse import payload: %v", err)
	}

	var rows []map[string]string
	for _, entry := range raw {
		row := make(map[string]string, len(entry))
		for k, v := range entry {
			var str string
			if err := json.Unmarshal(v, &str); err != nil {
				continue
			}
			row[strings.ToLower(k)] = str
		}
		rows = append(rows, row)
	}

	return s.importRows(semesterID, rows)
}

// ImportXLSX imports the first sheet of an Excel workbook. The first
// row is the header; columns are matched by alias.
func (s *ImportService) ImportXLSX(semesterID int64, r io.Reader) (*ImportResult, error) {
	if err := s.checkSemester(semesterID); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, validation.Errorf("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, validation.Errorf("workbook has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return s.importTable(semesterID, cells)
}

// ImportCSV imports a comma-separated file with a header row
func (s *ImportService) ImportCSV(semesterID int64, r io.Reader) (*ImportResult, error) {
	if err := s.checkSemester(semesterID); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	cells, err := reader.ReadAll()
	if err != nil {
		return nil, validation.Errorf("failed to parse CSV: %v", err)
	}

	return s.importTable(semesterID, cells)
}

func (s *ImportService) checkSemester(semesterID int64) error {
	sem, err := s.semesters.GetByID(semesterID)
	if err != nil {
		return err
	}
	if sem == nil {
		return ErrSemesterNotFound
	}
	return nil
}

// importTable converts header+rows cell data into alias maps
func (s *ImportService) importTable(semesterID int64, cells [][]string) (*ImportResult, error) {
	if len(cells) < 2 {
		return nil, validation.Errorf("file has no data rows")
	}

	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []map[string]string
	for _, line := range cells[1:] {
		row := make(map[string]string, len(header))
		for i, cell := range line {
			if i < len(header) && header[i] != "" {
				row[header[i]] = cell
			}
		}
		rows = append(rows, row)
	}

	return s.importRows(semesterID, rows)
}

// importRows validates and batch-inserts parsed rows, appending after
// the semester's existing teaching order
func (s *ImportService) importRows(semesterID int64, rows []map[string]string) (*ImportResult, error) {
	existing, err := s.words.ListBySemester(semesterID)
	if err != nil {
		return nil, err
	}
	nextOrder := 0
	for _, w := range existing {
		if w.SortOrder >= nextOrder {
			nextOrder = w.SortOrder + 1
		}
	}

	result := &ImportResult{}
	var batch []*models.VocabWord
	for _, row := range rows {
		word := pick(row, wordAliases)
		meaning := pick(row, meaningAliases)
		if err := validation.ValidateWord(word, meaning); err != nil {
			result.Skipped++
			continue
		}

		batch = append(batch, &models.VocabWord{
			SemesterID: semesterID,
			Word:       strings.TrimSpace(word),
			Phonetic:   strings.TrimSpace(pick(row, phoneticAliases)),
			Meaning:    strings.TrimSpace(meaning),
			ExampleEn:  strings.TrimSpace(pick(row, exampleEnAliases)),
			ExampleCn:  strings.TrimSpace(pick(row, exampleCnAliases)),
			SortOrder:  nextOrder,
		})
		nextOrder++
	}

	if len(batch) == 0 {
		return nil, validation.Errorf("no valid words found in import")
	}

	if err := s.words.CreateBatch(batch); err != nil {
		return nil, err
	}

	result.Imported = len(batch)
	log.Printf("Imported %d words into semester %d (%d skipped)",
		result.Imported, semesterID, result.Skipped)
	return result, nil
}

// pick returns the first non-empty value among a field's aliases
func pick(row map[string]string, aliases []string) string {
	for _, a := range aliases {
		if v, ok := row[a]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
