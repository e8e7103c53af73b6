package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ride_notifier/internal/domain/ride"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
	htransport "google.golang.org/api/transport/http"
)

// Config locates the spreadsheet and its worksheets.
type Config struct {
	SpreadsheetID     string
	CredentialsPath   string // Service account key file
	RegistrationSheet int    // Worksheet indexes
	SubmissionSheet   int
	RidesSheet        int
	Location          *time.Location
	TimestampLayout   string
}

// Source reads ride data from a Google spreadsheet. It implements ride.Source.
type Source struct {
	cfg        Config
	httpClient *http.Client
	srv        *gsheets.Service
	titles     []string // Worksheet titles by index, fetched on first use
}

// Open authenticates with the service account and returns a Source for one run.
func Open(ctx context.Context, cfg Config) (*Source, error) {
	opts := []option.ClientOption{
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(gsheets.SpreadsheetsReadonlyScope),
	}
	httpClient, _, err := htransport.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets http client: %w", err)
	}
	srv, err := gsheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Source{cfg: cfg, httpClient: httpClient, srv: srv}, nil
}

func (s *Source) Rides(ctx context.Context) ([]ride.Ride, error) {
	submission, err := s.fetch(ctx, s.cfg.SubmissionSheet)
	if err != nil {
		return nil, err
	}
	rides, err := s.fetch(ctx, s.cfg.RidesSheet)
	if err != nil {
		return nil, err
	}
	return decodeRides(submission, rides, s.cfg.Location, s.cfg.TimestampLayout)
}

func (s *Source) Participants(ctx context.Context) (*ride.ParticipantTable, error) {
	registration, err := s.fetch(ctx, s.cfg.RegistrationSheet)
	if err != nil {
		return nil, err
	}
	return decodeParticipants(registration, s.cfg.Location, s.cfg.TimestampLayout)
}

// Close releases the connections held by the underlying HTTP client.
func (s *Source) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *Source) fetch(ctx context.Context, index int) (table, error) {
	title, err := s.sheetTitle(ctx, index)
	if err != nil {
		return table{}, err
	}
	resp, err := s.srv.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, quoteTitle(title)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return table{}, fmt.Errorf("failed to read worksheet %q: %w", title, err)
	}
	return newTable(stringify(resp.Values)), nil
}

func (s *Source) sheetTitle(ctx context.Context, index int) (string, error) {
	if s.titles == nil {
		ss, err := s.srv.Spreadsheets.Get(s.cfg.SpreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("failed to read spreadsheet %s: %w", s.cfg.SpreadsheetID, err)
		}
		for _, sh := range ss.Sheets {
			s.titles = append(s.titles, sh.Properties.Title)
		}
	}
	if index < 0 || index >= len(s.titles) {
		return "", fmt.Errorf("spreadsheet has no worksheet %d (%d worksheets)", index, len(s.titles))
	}
	return s.titles[index], nil
}

// quoteTitle turns a worksheet title into an A1 range covering the whole sheet.
func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func stringify(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = fmt.Sprint(cell)
		}
	}
	return out
}
