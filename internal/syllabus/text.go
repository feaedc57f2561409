package syllabus

import (
	"fmt"
	"os"
	"strings"

	"github.com/tmalunga/syllabussense/pkg/models"
)

// TextSource reads topics from a plain-text or markdown syllabus. A line
// containing the topic marker starts a new topic; the remainder of that line
// is the title. Pipe-table blocks become table elements, any other non-blank
// line a paragraph. Content before the first marker is ignored.
type TextSource struct {
	marker string
	lines  []string
	pos    int
	// title of the topic whose marker was consumed but whose body has not
	// been read yet; empty once exhausted
	pendingTitle string
	started      bool
	done         bool
}

// NewTextSource creates a source over the document at path.
func NewTextSource(path, topicMarker string) (*TextSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read syllabus document: %w", err)
	}
	if topicMarker == "" {
		topicMarker = "Core element"
	}
	return &TextSource{
		marker: topicMarker,
		lines:  strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"),
	}, nil
}

// Next returns the next topic or ErrExhausted.
func (s *TextSource) Next() (models.Topic, error) {
	if s.done {
		return models.Topic{}, ErrExhausted
	}

	if !s.started {
		// Skip the preamble up to the first marker.
		s.started = true
		for s.pos < len(s.lines) {
			if title, ok := s.markerTitle(s.lines[s.pos]); ok {
				s.pendingTitle = title
				s.pos++
				break
			}
			s.pos++
		}
	}

	if s.pendingTitle == "" {
		s.done = true
		return models.Topic{}, ErrExhausted
	}

	topic := models.Topic{Title: s.pendingTitle}
	s.pendingTitle = ""

	for s.pos < len(s.lines) {
		line := s.lines[s.pos]

		if title, ok := s.markerTitle(line); ok {
			s.pendingTitle = title
			s.pos++
			return topic, nil
		}

		if isTableLine(line) {
			rows := s.readTable()
			if len(rows) > 0 {
				topic.Elements = append(topic.Elements, models.Element{Type: models.ElementTable, Rows: rows})
			}
			continue
		}

		if text := strings.TrimSpace(line); text != "" {
			topic.Elements = append(topic.Elements, models.Element{Type: models.ElementParagraph, Text: text})
		}
		s.pos++
	}

	s.done = true
	return topic, nil
}

// markerTitle reports whether line starts a new topic, and if so returns the
// cleaned-up title.
func (s *TextSource) markerTitle(line string) (string, bool) {
	text := strings.TrimSpace(line)
	if !strings.Contains(text, s.marker) {
		return "", false
	}
	title := strings.ReplaceAll(text, "**"+s.marker+"**", "")
	title = strings.ReplaceAll(title, s.marker, "")
	title = strings.Trim(strings.TrimSpace(title), " -:")
	return title, true
}

// readTable consumes a run of pipe-table lines starting at the current
// position and returns the cell grid, skipping separator rows.
func (s *TextSource) readTable() [][]string {
	var rows [][]string
	for s.pos < len(s.lines) && isTableLine(s.lines[s.pos]) {
		line := strings.TrimSpace(s.lines[s.pos])
		s.pos++

		cells := strings.Split(strings.Trim(line, "|"), "|")
		row := make([]string, 0, len(cells))
		separator := true
		for _, cell := range cells {
			cell = strings.TrimSpace(cell)
			if strings.Trim(cell, "-: ") != "" {
				separator = false
			}
			row = append(row, cell)
		}
		if !separator {
			rows = append(rows, row)
		}
	}
	return rows
}

func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}
