// Package source provides the places taxonomy documents are read from: a
// directory of JSON files or a Postgres table. Names returned by List are
// what Fetch accepts; they are stable across calls and sorted.
package source

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Fetch for names the source does not hold.
var ErrNotFound = errors.New("taxonomy document not found")

// Source lists and fetches taxonomy documents.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, name string) ([]byte, error)
}
