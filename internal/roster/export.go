package roster

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX renders the roster with current statuses as a single-sheet
// xlsx workbook, for the admin console's export button.
func WriteXLSX(w io.Writer, people []Person) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Roster"
	f.SetSheetName("Sheet1", sheet)

	headers := []any{"ID", "Name", "Department", "Grade", "Role", "Room", "Status", "Updated"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}

	for i, p := range people {
		updated := ""
		if p.StatusAt != nil {
			updated = p.StatusAt.Format(time.RFC3339)
		}
		row := []any{p.ID, p.Name, p.Department, p.Grade, p.Role, p.Room, p.Status.String(), updated}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
