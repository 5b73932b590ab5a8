// Package storage implements the object-storage adapter: an S3-compatible
// store for user files plus a local-disk fallback used when a user has not
// enabled object storage.
package storage

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename reduces a user-supplied filename to a safe key component:
// base name only, unsafe characters collapsed to underscores.
func SanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	safe := unsafeKeyChars.ReplaceAllString(base, "_")
	safe = strings.Trim(safe, "._")
	if safe == "" {
		safe = "file"
	}
	return safe
}

// MakeKey derives the storage key for a new upload: a millisecond timestamp
// prefix, a random uuid, and the sanitized filename. The uuid keeps keys
// unique even for uploads landing in the same millisecond.
func MakeKey(filename string) string {
	return fmt.Sprintf("%d-%v-%s", time.Now().UnixMilli(), uuid.New(), SanitizeFilename(filename))
}

// KeyFromURL recovers the storage key from a previously returned URL.
// It tolerates both well-formed URLs ("https://host/bucket/key") and legacy
// path-only strings ("/bucket/key" or "key"). bucket may be empty, in which
// case no bucket segment is stripped.
func KeyFromURL(raw string, bucket string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		p = u.Path
	}
	p = strings.TrimPrefix(p, "/")
	if bucket != "" {
		p = strings.TrimPrefix(p, bucket+"/")
	}
	return p
}
