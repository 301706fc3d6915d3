// Package storage puts uploaded files in the hosted bucket and hands out
// public and signed URLs for them.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/WaveLink/WL-Backend/internal/utils"
)

// ObjectStore is the remote object store collaborator.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, name string, body io.ReadSeeker, contentType string) error
	PublicURL(bucket, name string) string
	// SignedURL returns a time-limited GET URL for name.
	SignedURL(ctx context.Context, bucket, name string, ttl time.Duration) (string, error)
	// SignedUploadURL returns a time-limited PUT URL a browser can upload to
	// directly.
	SignedUploadURL(ctx context.Context, bucket, name, contentType string, ttl time.Duration) (string, error)
}

// ObjectName builds a collision-free object name: prefix, a random uuid, and
// the extension of filename. The extension is cut at the first character
// outside [A-Za-z0-9.] so the name never needs escaping in a URL path.
func ObjectName(prefix, filename string) string {
	return prefix + utils.GenerateUUID() + safeExt(filename)
}

func safeExt(filename string) string {
	ext := filepath.Ext(filename)
	for i := 1; i < len(ext); i++ {
		c := ext[i]
		if c == '.' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			continue
		}
		ext = ext[:i]
		break
	}
	if ext == "." {
		return ""
	}
	return ext
}
