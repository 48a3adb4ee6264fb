// Package admin provides administrative operations on taxonomy storage.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/xbrlmap/internal/source"
	"github.com/JonMunkholm/xbrlmap/internal/taxonomy"
)

// ImportTimeout is the maximum duration for storing one document.
const ImportTimeout = 30 * time.Second

// Store receives imported documents.
type Store interface {
	Put(ctx context.Context, name string, document []byte) error
}

// Resetter is a Store that can be emptied before an import.
type Resetter interface {
	Reset(ctx context.Context) (int64, error)
}

// Importer copies taxonomy documents from one source into a store. Every
// document is validated before it is stored, so a store only ever holds
// documents the server can load.
type Importer struct {
	From   source.Source
	To     Store
	Logger *slog.Logger
}

// ImportFailure is a document that was not stored.
type ImportFailure struct {
	Name string `json:"name" yaml:"name"`
	Err  string `json:"error" yaml:"error"`
}

// ImportResult summarises one run.
type ImportResult struct {
	Removed  int64           `json:"removed" yaml:"removed"`
	Imported []string        `json:"imported" yaml:"imported"`
	Rejected []ImportFailure `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

type importStep func(ctx context.Context, name string, data []byte) error

// ImportAll copies every listed document. With reset the store is emptied
// first and must implement Resetter. Invalid documents are rejected and
// reported; storage errors abort the run.
func (i *Importer) ImportAll(ctx context.Context, reset bool) (*ImportResult, error) {
	logger := i.Logger
	if logger == nil {
		logger = slog.Default()
	}
	result := &ImportResult{Imported: []string{}}

	if reset {
		r, ok := i.To.(Resetter)
		if !ok {
			return nil, fmt.Errorf("store %T cannot be reset", i.To)
		}
		n, err := r.Reset(ctx)
		if err != nil {
			return nil, err
		}
		result.Removed = n
		logger.Info("Taxonomy store reset", "removed", n)
	}

	names, err := i.From.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		data, err := i.From.Fetch(ctx, name)
		if err != nil {
			return result, err
		}
		if err := i.runSteps(ctx, name, data, []importStep{validateDocument, i.store}); err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			var rejected *rejectedError
			if !errors.As(err, &rejected) {
				return result, err
			}
			logger.Warn("Taxonomy document rejected", "name", name, "error", rejected.err)
			result.Rejected = append(result.Rejected, ImportFailure{Name: name, Err: rejected.err.Error()})
			continue
		}
		logger.Info("Taxonomy document imported", "name", name, "bytes", len(data))
		result.Imported = append(result.Imported, name)
	}
	return result, nil
}

func (i *Importer) runSteps(ctx context.Context, name string, data []byte, steps []importStep) error {
	for _, step := range steps {
		if err := step(ctx, name, data); err != nil {
			return err
		}
	}
	return nil
}

func (i *Importer) store(ctx context.Context, name string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, ImportTimeout)
	defer cancel()
	return i.To.Put(ctx, name, data)
}

// rejectedError marks a document that failed validation.
type rejectedError struct{ err error }

func (e *rejectedError) Error() string { return e.err.Error() }
func (e *rejectedError) Unwrap() error { return e.err }

func validateDocument(_ context.Context, name string, data []byte) error {
	if _, err := taxonomy.Parse(data); err != nil {
		return &rejectedError{err: fmt.Errorf("%s: %w", name, err)}
	}
	return nil
}
