// Package sheets reads candidate rows from the recruiting spreadsheet via
// the Google Sheets API.
package sheets

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/beluccky/candidate-bot/internal/model"
)

// Column layout of the recruiting sheet (0-indexed).
const (
	colName      = 0  // A: candidate full name
	colObject    = 11 // L: object / position label
	colRecruiter = 12 // M: recruiter name
	colStartDate = 16 // Q: start date text
)

// readRange covers columns A through Q of every data row; row 1 is a header.
const readRange = "A2:Q"

// Fetcher reads candidate rows from every tab of one spreadsheet.
type Fetcher struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewFetcher builds a read-only Sheets client from service account
// credentials; inline JSON takes priority over a credentials file path.
func NewFetcher(ctx context.Context, spreadsheetID, credentialsJSON, credentialsFile string) (*Fetcher, error) {
	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope)}
	switch {
	case credentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	default:
		return nil, fmt.Errorf("no Google credentials configured")
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets.NewService: %w", err)
	}

	return &Fetcher{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// FetchRows reads every tab of the spreadsheet and returns all raw candidate
// rows. A transport failure aborts the whole fetch so the caller can retry
// the cycle later with consistent data.
func (f *Fetcher) FetchRows(ctx context.Context) ([]model.SheetRow, error) {
	titles, err := f.sheetTitles(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.SheetRow
	for _, title := range titles {
		batch, err := f.fetchSheet(ctx, title)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", title, err)
		}
		log.Printf("[sheets] Sheet %q: %d row(s)", title, len(batch))
		rows = append(rows, batch...)
	}
	return rows, nil
}

// sheetTitles lists the tab names of the spreadsheet.
func (f *Fetcher) sheetTitles(ctx context.Context) ([]string, error) {
	meta, err := f.svc.Spreadsheets.Get(f.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet metadata: %w", err)
	}

	titles := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (f *Fetcher) fetchSheet(ctx context.Context, title string) ([]model.SheetRow, error) {
	rangeRef := fmt.Sprintf("'%s'!%s", title, readRange)
	resp, err := f.svc.Spreadsheets.Values.Get(f.spreadsheetID, rangeRef).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get values: %w", err)
	}

	rows := make([]model.SheetRow, 0, len(resp.Values))
	for i, values := range resp.Values {
		// Data starts at spreadsheet row 2; the row number keys the
		// candidate ID so it must match what a human sees in the sheet.
		rows = append(rows, rowFromValues(title, i+2, values))
	}
	return rows, nil
}

// rowFromValues converts one raw value slice into a SheetRow. Short rows are
// padded: a missing trailing column reads as an empty cell, not an error.
func rowFromValues(sheetName string, rowNumber int, values []interface{}) model.SheetRow {
	return model.SheetRow{
		SheetName: sheetName,
		RowNumber: rowNumber,
		Name:      cellText(values, colName),
		Object:    cellText(values, colObject),
		Recruiter: cellText(values, colRecruiter),
		DateText:  cellText(values, colStartDate),
	}
}

func cellText(values []interface{}, idx int) string {
	if idx >= len(values) {
		return ""
	}
	s, ok := values[idx].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
