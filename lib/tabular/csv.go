package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
)

// CSVSink writes rows to a file as they arrive. Each row is flushed
// through to disk so a partial run still leaves a readable file behind.
type CSVSink struct {
	path   string
	file   *os.File
	writer *csv.Writer
	width  int
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Begin(ctx context.Context, header Header) error {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.path, err)
	}
	s.file = file
	s.writer = csv.NewWriter(file)
	s.width = len(header)

	err = s.writer.Write(header)
	if err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVSink) Write(ctx context.Context, row Row) error {
	if s.writer == nil {
		return errors.New("csv sink has not been started")
	}
	err := checkWidth(row, s.width)
	if err != nil {
		return err
	}
	err = s.writer.Write(row)
	if err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVSink) Close(ctx context.Context) error {
	if s.file == nil {
		return nil
	}
	s.writer.Flush()
	return errors.Join(s.writer.Error(), s.file.Close())
}
