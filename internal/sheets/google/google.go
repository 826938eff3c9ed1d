// Package google implements the table-store ports on Google Sheets, using
// Drive to look spreadsheets up by name.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"jizhang/internal/sheets"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const spreadsheetMime = "application/vnd.google-apps.spreadsheet"

type Client struct {
	svc   *gsheet.Service
	drive *drive.Service
}

type spreadsheet struct {
	c     *Client
	id    string
	title string
}

type table struct {
	c    *Client
	id   string
	name string
}

var (
	_ sheets.Client      = (*Client)(nil)
	_ sheets.Spreadsheet = (*spreadsheet)(nil)
	_ sheets.Table       = (*table)(nil)
)

// Connect authenticates with the first usable credential source and returns
// a client. Any credential failure is reported as *sheets.AuthenticationError.
func Connect(ctx context.Context, src CredentialSource) (*Client, error) {
	creds, err := src.Credentials(ctx)
	if err != nil {
		return nil, &sheets.AuthenticationError{Err: err}
	}
	return New(ctx, goption.WithCredentials(creds))
}

// New builds a client from explicit client options.
func New(ctx context.Context, opts ...goption.ClientOption) (*Client, error) {
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	drv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Client{svc: svc, drive: drv}, nil
}

func (c *Client) OpenByID(ctx context.Context, id string) (sheets.Spreadsheet, error) {
	resp, err := c.svc.Spreadsheets.Get(id).
		Fields("spreadsheetId,properties.title").
		Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("spreadsheet %s: %w", id, sheets.ErrNotFound)
		}
		return nil, fmt.Errorf("get spreadsheet %s: %w", id, err)
	}
	ss := &spreadsheet{c: c, id: resp.SpreadsheetId}
	if ss.id == "" {
		ss.id = id
	}
	if resp.Properties != nil {
		ss.title = resp.Properties.Title
	}
	return ss, nil
}

func (c *Client) OpenByName(ctx context.Context, name string) (sheets.Spreadsheet, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), spreadsheetMime)
	resp, err := c.drive.Files.List().Q(q).
		Fields("files(id,name)").
		PageSize(10).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search spreadsheet %q: %w", name, err)
	}
	if len(resp.Files) == 0 {
		return nil, fmt.Errorf("spreadsheet named %q: %w", name, sheets.ErrNotFound)
	}
	if len(resp.Files) > 1 {
		slog.WarnContext(ctx, "several spreadsheets share the name, using the first", "name", name, "count", len(resp.Files))
	}
	return c.OpenByID(ctx, resp.Files[0].Id)
}

func (s *spreadsheet) ID() string    { return s.id }
func (s *spreadsheet) Title() string { return s.title }

func (s *spreadsheet) Table(ctx context.Context, name string) (sheets.Table, bool, error) {
	resp, err := s.c.svc.Spreadsheets.Get(s.id).
		Fields("sheets.properties.title").
		Context(ctx).Do()
	if err != nil {
		return nil, false, fmt.Errorf("list tables of %s: %w", s.id, err)
	}
	for _, sh := range resp.Sheets {
		if sh.Properties != nil && sh.Properties.Title == name {
			return &table{c: s.c, id: s.id, name: name}, true, nil
		}
	}
	return nil, false, nil
}

func (s *spreadsheet) AddTable(ctx context.Context, name string, rows, cols int) (sheets.Table, error) {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{
					Title: name,
					GridProperties: &gsheet.GridProperties{
						RowCount:    int64(rows),
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}
	if _, err := s.c.svc.Spreadsheets.BatchUpdate(s.id, req).Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("add table %s: %w", name, err)
	}
	return &table{c: s.c, id: s.id, name: name}, nil
}

func (t *table) Name() string { return t.name }

func (t *table) AppendRow(ctx context.Context, values []any) error {
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := t.c.svc.Spreadsheets.Values.Append(t.id, a1(t.name)+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", t.name, err)
	}
	return nil
}

func (t *table) Values(ctx context.Context) ([][]string, error) {
	resp, err := t.c.svc.Spreadsheets.Values.Get(t.id, a1(t.name)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.name, err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, toStrings(row))
	}
	return out, nil
}

// a1 quotes a table name for use in an A1 range.
func a1(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v != nil {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
