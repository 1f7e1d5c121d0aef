// Package export renders payment rosters as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the roster.
const SheetName = "Payments"

// Headers are the roster columns, in order.
var Headers = []string{
	"No", "Student Name", "Email", "Phone", "Amount", "Method", "Status",
	"Month", "Year", "Cnic", "Room Number", "Floor", "Capacity", "Full",
}

// RosterRow is one exported payment. Missing student or room fields are "N/A".
type RosterRow struct {
	No          int    `json:"no"`
	StudentName string `json:"student_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Amount      string `json:"amount"`
	Method      string `json:"method"`
	Status      string `json:"status"` // Paid or Unpaid
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	CNIC        string `json:"cnic"`
	RoomNumber  string `json:"room_number"`
	Floor       string `json:"floor"`
	Capacity    string `json:"capacity"`
	Full        string `json:"full"`
}

func (r RosterRow) values() []interface{} {
	return []interface{}{
		r.No, r.StudentName, r.Email, r.Phone, r.Amount, r.Method, r.Status,
		r.Month, r.Year, r.CNIC, r.RoomNumber, r.Floor, r.Capacity, r.Full,
	}
}

// WriteRoster writes rows as an .xlsx workbook to w.
func WriteRoster(w io.Writer, rows []RosterRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row.values()
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
