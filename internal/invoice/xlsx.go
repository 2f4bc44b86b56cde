package invoice

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/timesheet/internal/model"
)

const sheetName = "Facture"

// WriteXLSX renders inv as a single-sheet workbook: a header block, one row
// per worked day and a totals block.
func WriteXLSX(inv model.Invoice, w io.Writer) error {
	f, err := buildWorkbook(inv)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook of inv to path.
func SaveXLSX(inv model.Invoice, path string) error {
	f, err := buildWorkbook(inv)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

func buildWorkbook(inv model.Invoice) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating style: %w", err)
	}

	header := [][]any{
		{"Facture", inv.Number},
		{"Date", inv.Date},
		{"Période", inv.MonthName},
		{"Client", inv.ClientName},
		{"Prestataire", inv.ProviderName},
		{"Destinataire", inv.RecipientEmail},
	}
	row := 1
	for _, h := range header {
		if err := setRow(f, row, h...); err != nil {
			f.Close()
			return nil, err
		}
		row++
	}

	row++
	tableHeader := row
	if err := setRow(f, row, "Date", "Début", "Fin", "Heures"); err != nil {
		f.Close()
		return nil, err
	}
	for _, l := range inv.Lines {
		row++
		if err := setRow(f, row, l.Date.String(), l.StartTime, l.EndTime, l.Hours); err != nil {
			f.Close()
			return nil, err
		}
	}

	row += 2
	totals := [][]any{
		{"Total heures", inv.TotalHours},
		{"Taux horaire", inv.HourlyRate},
		{"Montant total", inv.TotalAmount},
	}
	firstTotal := row
	for _, t := range totals {
		if err := setRow(f, row, t...); err != nil {
			f.Close()
			return nil, err
		}
		row++
	}

	for _, span := range [][2]string{
		{"A1", fmt.Sprintf("A%d", len(header))},
		{fmt.Sprintf("A%d", tableHeader), fmt.Sprintf("D%d", tableHeader)},
		{fmt.Sprintf("A%d", firstTotal), fmt.Sprintf("A%d", row-1)},
	} {
		if err := f.SetCellStyle(sheetName, span[0], span[1], bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("styling cells: %w", err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "D", 16); err != nil {
		f.Close()
		return nil, fmt.Errorf("sizing columns: %w", err)
	}
	return f, nil
}

func setRow(f *excelize.File, row int, values ...any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("setting %s: %w", cell, err)
		}
	}
	return nil
}
