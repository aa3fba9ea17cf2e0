package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"goldengate/internal/domain"
)

var (
	ErrEmptyReport   = errors.New("nothing to export")
	ErrUnknownReport = errors.New("unknown report")
)

type ReportKind string

const (
	ReportInventory ReportKind = "inventory"
	ReportFinancing ReportKind = "financing"
)

var ReportKinds = []ReportKind{ReportInventory, ReportFinancing}

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

type reportTable struct {
	base    string
	headers []string
	rows    [][]any
}

type ReportService struct {
	Inv *InventoryService
	Fin *FinancingService
}

func NewReportService(inv *InventoryService, fin *FinancingService) *ReportService {
	return &ReportService{Inv: inv, Fin: fin}
}

func (s *ReportService) table(kind ReportKind) (reportTable, error) {
	switch kind {
	case ReportInventory:
		items := s.Inv.List()
		t := reportTable{
			base:    "reporte_inventario",
			headers: []string{"id", "name", "category", "type", "stock", "price", "karats", "grams"},
		}
		for _, it := range items {
			t.rows = append(t.rows, []any{it.ID, it.Name, it.Category, it.Type, it.Stock, it.Price, it.Karats, it.Grams})
		}
		return t, nil
	case ReportFinancing:
		recs := s.Fin.List()
		t := reportTable{
			base:    "reporte_financiamiento",
			headers: []string{"id", "customer", "item", "totalPrice", "paid", "dueDate", "status"},
		}
		for _, r := range recs {
			t.rows = append(t.rows, []any{r.ID, r.Customer, r.Item, r.TotalPrice, r.Paid, r.DueDate, r.Status})
		}
		return t, nil
	}
	return reportTable{}, fmt.Errorf("%w: %q", ErrUnknownReport, kind)
}

// CSV renders a report and returns it with its download filename.
func (s *ReportService) CSV(kind ReportKind) ([]byte, string, error) {
	t, err := s.table(kind)
	if err != nil {
		return nil, "", err
	}
	if len(t.rows) == 0 {
		return nil, "", ErrEmptyReport
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.headers); err != nil {
		return nil, "", err
	}
	for _, row := range t.rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = csvCell(v)
		}
		if err := w.Write(rec); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), t.base + ".csv", nil
}

// XLSX renders the same table as a spreadsheet.
func (s *ReportService) XLSX(kind ReportKind) ([]byte, string, error) {
	t, err := s.table(kind)
	if err != nil {
		return nil, "", err
	}
	if len(t.rows) == 0 {
		return nil, "", ErrEmptyReport
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"

	header := make([]any, len(t.headers))
	for i, h := range t.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", err
	}
	for i, row := range t.rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = xlsxCell(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, "", err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), t.base + ".xlsx", nil
}

// Render dispatches on format.
func (s *ReportService) Render(kind ReportKind, format string) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return s.CSV(kind)
	case FormatXLSX:
		return s.XLSX(kind)
	}
	return nil, "", fmt.Errorf("%w: format %q", ErrUnknownReport, format)
}

// WriteSnapshot writes every non-empty CSV report into dir, suffixed with the date.
func (s *ReportService) WriteSnapshot(dir string, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for _, kind := range ReportKinds {
		body, name, err := s.CSV(kind)
		if errors.Is(err, ErrEmptyReport) {
			continue
		}
		if err != nil {
			return written, err
		}
		name = strings.TrimSuffix(name, ".csv") + "-" + now.Format("20060102") + ".csv"
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func csvCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case domain.FinancingStatus:
		return string(x)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	default:
		// embedded objects travel as JSON text inside the cell
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func xlsxCell(v any) any {
	switch x := v.(type) {
	case *float64:
		if x == nil {
			return nil
		}
		return *x
	case domain.FinancingStatus:
		return string(x)
	case string, int, float64, nil:
		return x
	default:
		return csvCell(x)
	}
}
