package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

// Client appends activity rows to a yearly sheet ("<year> <base>").
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

var (
	_ ports.ActivityWriter = (*Client)(nil)
	_ ports.ActivityReader = (*Client)(nil)
)

// Options configure the client. CredentialsJSON wins over CredentialsFile;
// when both are empty GOOGLE_APPLICATION_CREDENTIALS is used.
type Options struct {
	SpreadsheetID   string
	SheetBase       string
	CredentialsJSON string
	CredentialsFile string
}

// New builds a client authenticated with a service account. Extra client
// options replace credential loading entirely (used to point at a fake
// endpoint).
func New(ctx context.Context, opts Options, extra ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(opts.SheetBase)
	if base == "" {
		base = "Activity"
	}

	clientOpts := extra
	if len(clientOpts) == 0 {
		creds, err := loadCredentials(ctx, opts)
		if err != nil {
			return nil, err
		}
		clientOpts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets client initialized",
		log.FieldComponent, log.ComponentSheets, "spreadsheet_id", spreadsheetID, "sheet_base", base)
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetBase: base}, nil
}

func loadCredentials(ctx context.Context, opts Options) ([]byte, error) {
	if js := strings.TrimSpace(opts.CredentialsJSON); js != "" {
		slog.InfoContext(ctx, "Using inline service account credentials", log.FieldComponent, log.ComponentSheets)
		return []byte(js), nil
	}

	path := strings.TrimSpace(opts.CredentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	slog.InfoContext(ctx, "Read service account credentials", log.FieldComponent, log.ComponentSheets, "path", path)
	return data, nil
}

// NewHTTPClient returns a pooled HTTP client for the Sheets API, passed as
// goption.WithHTTPClient when the default transport is not wanted.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// AppendActivity appends records to the sheet of the year they happened in.
// A batch spanning two years results in one append per sheet; the returned
// reference lists the updated ranges.
func (c *Client) AppendActivity(ctx context.Context, records []ports.ActivityRecord) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if len(records) == 0 {
		return "", errors.New("no records to append")
	}

	byYear := map[int][][]any{}
	for _, r := range records {
		y := r.At.UTC().Year()
		byYear[y] = append(byYear[y], encodeRow(r))
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	refs := make([]string, 0, len(years))
	for _, y := range years {
		sheet := yearPrefixedName(c.sheetBase, y)
		rng := fmt.Sprintf("%s!A:%s", sheet, lastColumn)
		resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: byYear[y]}).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
		}
		if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
			refs = append(refs, resp.Updates.UpdatedRange)
		} else {
			refs = append(refs, rng)
		}
	}
	return strings.Join(refs, ","), nil
}

// ListActivity reads back the rows of the year's sheet. Rows that do not
// start with a timestamp (headers, notes) are skipped.
func (c *Client) ListActivity(ctx context.Context, year int) ([]ports.ActivityRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:%s", yearPrefixedName(c.sheetBase, year), lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	out := make([]ports.ActivityRecord, 0, len(resp.Values))
	for _, row := range resp.Values {
		r, ok := decodeRow(row)
		if !ok {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
