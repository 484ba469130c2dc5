// Package gsheets uploads the work-hours table to a Google spreadsheet.
package gsheets

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Tiliavir/timew-bot/internal/export"
	"github.com/Tiliavir/timew-bot/internal/model"
)

// Client is an authenticated Google Sheets client bound to one spreadsheet.
type Client struct {
	srv           *sheets.Service
	spreadsheetID string
}

// HTTPClient returns an OAuth2 client authorized by the service account key
// in credentialsFile.
func HTTPClient(ctx context.Context, credentialsFile string) (*http.Client, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading service account credentials: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}
	return cfg.Client(ctx), nil
}

// Open creates a client for spreadsheetID using a service account key file.
func Open(ctx context.Context, spreadsheetID, credentialsFile string) (*Client, error) {
	hc, err := HTTPClient(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}
	return New(ctx, spreadsheetID, option.WithHTTPClient(hc))
}

// New creates a client for spreadsheetID with explicit client options.
func New(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Client, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &Client{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// EnsureSheet adds a sheet named title unless the spreadsheet already has one.
// It reports whether the sheet was created.
func (c *Client) EnsureSheet(ctx context.Context, title string) (bool, error) {
	meta, err := c.srv.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("reading spreadsheet: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return false, nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.srv.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return false, fmt.Errorf("creating sheet %s: %w", title, err)
	}
	return true, nil
}

// PushRows replaces the content of sheet title with the header and rows.
// It returns the number of rows written, header included.
func (c *Client) PushRows(ctx context.Context, title string, rows []model.DayRow) (int64, error) {
	if _, err := c.EnsureSheet(ctx, title); err != nil {
		return 0, err
	}

	sheetRange := fmt.Sprintf("'%s'", title)
	if _, err := c.srv.Spreadsheets.Values.Clear(c.spreadsheetID, sheetRange, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("clearing %s: %w", title, err)
	}

	values := make([][]any, 0, len(rows)+1)
	header := make([]any, len(export.Columns))
	for i, col := range export.Columns {
		header[i] = col
	}
	values = append(values, header)
	for _, r := range rows {
		values = append(values, export.Values(r))
	}

	vr := &sheets.ValueRange{Values: values}
	resp, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, sheetRange+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("writing %s: %w", title, err)
	}
	return resp.UpdatedRows, nil
}
