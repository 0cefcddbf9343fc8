// Package sheets keeps KV entries in a Google Sheets tab: the key in column A
// and the raw value from column B onwards, one entry per row. Values too long
// for one cell are split across consecutive cells.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"studentspend/internal/store"
)

// DefaultSheetName is used when no tab name is configured.
const DefaultSheetName = "KV"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ store.KV = (*Client)(nil)

// Credentials selects the service account. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

// New builds a client for the given spreadsheet and tab.
func New(ctx context.Context, spreadsheetID, sheetName string, creds Credentials) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = DefaultSheetName
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when creds is empty.
func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	file := strings.TrimSpace(creds.File)
	inline := strings.TrimSpace(creds.JSON)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case inline != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(inline)
	case file != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) readAll(ctx context.Context) ([][]interface{}, error) {
	rng := c.sheetName
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	values, err := c.readAll(ctx)
	if err != nil {
		return nil, err
	}
	e, ok := findKey(values, key)
	if !ok {
		return nil, store.ErrNotFound
	}
	return []byte(e.value), nil
}

func (c *Client) Put(ctx context.Context, key string, value []byte) error {
	values, err := c.readAll(ctx)
	if err != nil {
		return err
	}
	if e, ok := findKey(values, key); ok {
		vr := &gsheet.ValueRange{Values: [][]interface{}{rowValues(key, string(value), e.cells)}}
		rng := rowRange(c.sheetName, e.row)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update %s: %w", rng, err)
		}
		return nil
	}
	vr := &gsheet.ValueRange{Values: [][]interface{}{rowValues(key, string(value), 0)}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetName, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}
	return nil
}

// Delete clears the key's row; empty rows are skipped on read.
func (c *Client) Delete(ctx context.Context, key string) error {
	values, err := c.readAll(ctx)
	if err != nil {
		return err
	}
	e, ok := findKey(values, key)
	if !ok {
		return nil
	}
	rng := rowRange(c.sheetName, e.row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	return err
}

func (c *Client) Close() error { return nil }
