// internal/core/ports/storage.go
package ports

import (
	"context"
	"io"
	"time"
)

// ObjectStorage stores generated files such as inventory exports.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string, metadata map[string]string) (string, error)
	GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}
