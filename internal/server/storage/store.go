package storage

import "context"

// Store is a key-addressed binary blob store. Upload returns a URL that
// Fetch and Delete accept back; both also accept legacy path-only strings.
type Store interface {
	Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
	Delete(ctx context.Context, url string) bool
}
