// Package filestore stages uploaded statement files until the import worker
// picks them up.
package filestore

import "context"

// Store stages raw statement bytes and hands them back by URI.
type Store interface {
	// Stage persists the bytes under objectName and returns an opaque URI
	// that Fetch accepts.
	Stage(ctx context.Context, objectName string, data []byte) (string, error)
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
