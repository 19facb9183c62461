package report

import (
	"bytes"
	"fmt"

	"clockzy.com/clockzy/clocking"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName   = "History"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// HistoryWorkbook renders the per-day worked time of h as an xlsx file.
// Dates are newest first, the total row goes last.
func HistoryWorkbook(h clocking.History, ref clocking.Reference, userName string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 14)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s: %s to %s", userName,
		clocking.FormatTimestamp(h.From, ref.Location), clocking.FormatTimestamp(h.To, ref.Location)))
	f.MergeCell(sheetName, "A1", "C1")

	row := 3
	for col, title := range []string{"Date", "Worked", "Seconds"} {
		c, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(sheetName, c, title)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell("C", row), headerStyle)

	for i := len(h.Days) - 1; i >= 0; i-- {
		day := h.Days[i]
		row++
		f.SetCellValue(sheetName, cell("A", row), day.Date.In(ref.Location).Format(clocking.DateLayout))
		f.SetCellValue(sheetName, cell("B", row), day.Worked.String())
		f.SetCellValue(sheetName, cell("C", row), int64(day.Worked))
	}

	row++
	f.SetCellValue(sheetName, cell("A", row), "Total")
	f.SetCellValue(sheetName, cell("B", row), h.Total.String())
	f.SetCellValue(sheetName, cell("C", row), int64(h.Total))
	f.SetCellStyle(sheetName, cell("A", row), cell("C", row), totalStyle)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
