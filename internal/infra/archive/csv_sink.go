package archive

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

// CSVSink appends archived rows to a flat CSV file, writing the header only
// when the file is created or still empty.
type CSVSink struct {
	path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Append(_ context.Context, header []string, rows [][]string) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("error opening archive %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("error reading archive %s: %w", s.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("error writing archive header: %w", err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("error writing archive rows: %w", err)
	}
	return f.Sync()
}

func (s *CSVSink) Close() error {
	return nil
}
