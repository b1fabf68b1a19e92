// Package tabular streams fixed-width rows into files and tables. A
// sink receives the header once, then rows one at a time, so nothing
// buffers the whole output in memory.
package tabular

import (
	"context"
	"errors"
	"fmt"
)

type Header []string

type Row []string

// Sink consumes rows under a fixed header. Begin is called exactly once
// before the first Write, Close flushes whatever the destination
// buffers. Sinks reject rows whose width differs from the header.
type Sink interface {
	Begin(ctx context.Context, header Header) error
	Write(ctx context.Context, row Row) error
	Close(ctx context.Context) error
}

// MultiSink fans every call out to each sink in order. Begin and Write
// stop at the first failure, Close always reaches every sink so file
// handles are not leaked by one bad destination.
type MultiSink []Sink

func (m MultiSink) Begin(ctx context.Context, header Header) error {
	for _, sink := range m {
		err := sink.Begin(ctx, header)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Write(ctx context.Context, row Row) error {
	for _, sink := range m {
		err := sink.Write(ctx, row)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Close(ctx context.Context) error {
	var errs []error
	for _, sink := range m {
		err := sink.Close(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func checkWidth(row Row, width int) error {
	if len(row) != width {
		return fmt.Errorf("row has %d cells, header has %d", len(row), width)
	}
	return nil
}
