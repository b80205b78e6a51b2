package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"episodegap/internal/fileutil"
)

const defaultSheet = "Sheet1"

// Save writes the report to path as an xlsx workbook, replacing any previous
// report atomically.
func (r *Report) Save(path string) error {
	episodes := r.Episodes()
	notFound := r.NotFound()
	errs := r.Errors()

	book := excelize.NewFile()
	defer book.Close()

	header, err := book.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := book.SetSheetName(defaultSheet, SheetEpisodes); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	rows := make([][]any, 0, len(episodes))
	for _, row := range episodes {
		rows = append(rows, row.cells())
	}
	if err := writeSheet(book, SheetEpisodes, EpisodeHeaders, rows, header); err != nil {
		return err
	}

	for _, table := range []struct {
		name string
		rows []ErrorRow
	}{
		{SheetNotFound, notFound},
		{SheetErrors, errs},
	} {
		if _, err := book.NewSheet(table.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", table.name, err)
		}
		rows := make([][]any, 0, len(table.rows))
		for _, row := range table.rows {
			rows = append(rows, row.cells())
		}
		if err := writeSheet(book, table.name, ErrorHeaders, rows, header); err != nil {
			return err
		}
	}
	book.SetActiveSheet(0)

	if err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return book.Write(w)
	}); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeSheet(book *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	headerCells := make([]any, len(headers))
	for i, h := range headers {
		headerCells[i] = h
	}
	if err := book.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	if err := book.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := book.AutoFilter(sheet, "A1:"+last, nil); err != nil {
		return fmt.Errorf("filter %s: %w", sheet, err)
	}
	if err := book.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze %s header: %w", sheet, err)
	}
	return nil
}
