// Package export produces exporter-facing views of the canonical topic
// list: an XLSX topic-index workbook and structural annotated-transcript
// sections. It returns bytes and blocks; it never writes files.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
)

// Service renders read-only exports from already-canonical topics.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// TopicIndexXLSX returns an XLSX workbook (as bytes) with one row per
// canonical topic.
func (s *Service) TopicIndexXLSX(topics []topic.Topic, meta map[string]any) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Topics"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Title",
		"Page",
		"Line",
		"Key Issue",
		"Confidence",
		"Related Topics",
		"Legal Significance",
		"Context",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, t := range topics {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, t.Title)
		write(2, t.Page)
		write(3, t.Line)
		write(4, yesNo(t.IsKeyIssue))
		write(5, fmt.Sprintf("%.0f%%", t.Confidence*100))
		write(6, strings.Join(t.RelatedTopics, ", "))
		write(7, truncate(t.LegalSignificance, 140))
		write(8, truncate(t.Context, 200))
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 36) // title
	_ = f.SetColWidth(sheet, "B", "C", 8)  // anchors
	_ = f.SetColWidth(sheet, "D", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 32) // related
	_ = f.SetColWidth(sheet, "G", "H", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(topics),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
