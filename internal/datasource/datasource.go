// Package datasource defines the contracts for reading raw input objects.
//
// A Source opens a single object. An ObjectStore enumerates and opens many
// objects under a location prefix; both local directory trees and S3 buckets
// implement it. Listing a location with no matching objects is not an error:
// the store returns an empty slice and downstream stages produce empty
// tables.
package datasource

import (
	"context"
	"io"
)

// Source opens a single raw object for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Object is a named, openable input object.
type Object interface {
	Source
	// Name identifies the object for logs and error messages
	// (a filesystem path or an S3 key).
	Name() string
}

// ObjectStore lists the objects under a location prefix.
type ObjectStore interface {
	// List returns all objects under the store's configured location whose
	// name matches the store's filter. An empty result is valid.
	List(ctx context.Context) ([]Object, error)
}
