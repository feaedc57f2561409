package syllabus

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tmalunga/syllabussense/pkg/models"
)

// WorkbookSource reads topics from an xlsx workbook: one topic per
// worksheet, with the sheet name as the title. Rows with a single populated
// cell become paragraphs, everything else accumulates into a table element.
type WorkbookSource struct {
	file   *excelize.File
	sheets []string
	idx    int
}

// NewWorkbookSource opens the workbook at path.
func NewWorkbookSource(path string) (*WorkbookSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &WorkbookSource{
		file:   f,
		sheets: f.GetSheetList(),
	}, nil
}

// Next returns the next topic or ErrExhausted. The workbook is closed once
// the last sheet has been yielded.
func (s *WorkbookSource) Next() (models.Topic, error) {
	if s.idx >= len(s.sheets) {
		return models.Topic{}, ErrExhausted
	}

	sheet := s.sheets[s.idx]
	s.idx++

	rows, err := s.file.GetRows(sheet)
	if err != nil {
		return models.Topic{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	topic := models.Topic{Title: sheet}
	var table [][]string
	flushTable := func() {
		if len(table) > 0 {
			topic.Elements = append(topic.Elements, models.Element{Type: models.ElementTable, Rows: table})
			table = nil
		}
	}

	for _, row := range rows {
		populated := make([]string, 0, len(row))
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				populated = append(populated, strings.TrimSpace(cell))
			}
		}
		switch len(populated) {
		case 0:
			continue
		case 1:
			flushTable()
			topic.Elements = append(topic.Elements, models.Element{Type: models.ElementParagraph, Text: populated[0]})
		default:
			table = append(table, populated)
		}
	}
	flushTable()

	if s.idx >= len(s.sheets) {
		// Best effort; the workbook was opened read-only.
		_ = s.file.Close()
	}
	return topic, nil
}
