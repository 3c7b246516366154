// Package export renders expense listings as CSV or XLSX downloads.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hippocampus-app/hippocampus/internal/entity"
	"github.com/hippocampus-app/hippocampus/internal/repository"
)

// csvHeader is the fixed column order of the CSV export. Consumers import
// these files into spreadsheets, so the order is part of the contract.
const csvHeader = `"date","amount","currency","category","description"`

// Service produces export documents from the store.
type Service struct {
	store  repository.Store
	logger *slog.Logger
}

func NewService(store repository.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportCSV returns the filtered expense rows as CSV text. Every field is
// double-quoted, embedded quotes are doubled and newlines inside fields
// become spaces so a row never spans lines.
func (s *Service) ExportCSV(ctx context.Context, f repository.ExpenseFilter) (string, error) {
	start := time.Now()
	exps, err := s.store.ListExpenses(ctx, f)
	if err != nil {
		return "", fmt.Errorf("listing expenses for export: %w", err)
	}

	doc := BuildCSV(exps)
	s.logger.Info("export.csv.ok", "rows", len(exps),
		"elapsed_ms", time.Since(start).Milliseconds())
	return doc, nil
}

// ExportXLSX returns the filtered expense rows as an XLSX workbook.
func (s *Service) ExportXLSX(ctx context.Context, f repository.ExpenseFilter) ([]byte, error) {
	start := time.Now()
	exps, err := s.store.ListExpenses(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listing expenses for export: %w", err)
	}

	wb := excelize.NewFile()
	const sheet = "Expenses"
	if index, _ := wb.GetSheetIndex(sheet); index == -1 {
		if _, err := wb.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := wb.GetSheetIndex(sheet)
	wb.SetActiveSheet(activeIndex)

	headers := []string{"Date", "Amount", "Currency", "Category", "Description", "Member", "Source"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = wb.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, e := range exps {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = wb.SetCellValue(sheet, cell, v)
		}
		write(1, e.ExpenseDate)
		write(2, e.Amount)
		write(3, e.Currency)
		write(4, string(e.Category))
		write(5, e.Description)
		write(6, e.MemberID.String())
		write(7, string(e.Source))
		row++
	}

	_ = wb.SetColWidth(sheet, "A", "A", 12)
	_ = wb.SetColWidth(sheet, "B", "C", 10)
	_ = wb.SetColWidth(sheet, "D", "D", 18)
	_ = wb.SetColWidth(sheet, "E", "E", 40)
	_ = wb.SetColWidth(sheet, "F", "F", 38)

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok", "rows", len(exps),
		"elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// BuildCSV renders rows without touching the store. Used by tests and by
// callers that already hold the listing.
func BuildCSV(exps []entity.Expense) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')
	for _, e := range exps {
		b.WriteString(quoteCSV(e.ExpenseDate))
		b.WriteByte(',')
		b.WriteString(quoteCSV(fmt.Sprintf("%.2f", e.Amount)))
		b.WriteByte(',')
		b.WriteString(quoteCSV(e.Currency))
		b.WriteByte(',')
		b.WriteString(quoteCSV(string(e.Category)))
		b.WriteByte(',')
		b.WriteString(quoteCSV(e.Description))
		b.WriteByte('\n')
	}
	return b.String()
}

func quoteCSV(field string) string {
	field = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(field)
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
