package search

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lepinkainen/shelfsearch/internal/book"
)

// fakeAdapter is a scripted provider.Adapter.
type fakeAdapter struct {
	name    string
	records []book.RawRecord
	err     error
	delay   time.Duration
	decline bool
	panics  bool
	calls   atomic.Int32
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Accepts(book.SearchQuery) bool { return !f.decline }

func (f *fakeAdapter) Fetch(ctx context.Context, _ book.SearchQuery) ([]book.RawRecord, error) {
	f.calls.Add(1)
	if f.panics {
		panic("boom")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]book.RawRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeAdapter) Ping(context.Context) error { return nil }

func raw(source, title string, authors ...string) book.RawRecord {
	return book.RawRecord{Source: source, Title: title, Authors: authors}
}
