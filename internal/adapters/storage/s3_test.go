package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/mfg-erp/test/helpers"
)

func newOfflineStorage(t *testing.T) *S3Storage {
	t.Helper()
	client := s3.NewFromConfig(aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	}, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return newS3Storage(client, "erp-exports", "us-east-1", helpers.TestLogger())
}

func TestS3Storage_GetPresignedURL(t *testing.T) {
	s := newOfflineStorage(t)

	raw, err := s.GetPresignedURL(context.Background(), "exports/inventory-20250301.xlsx", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Contains(t, u.Path, "/erp-exports/exports/inventory-20250301.xlsx")
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		key, given, want string
	}{
		{"a.json", "", "application/json"},
		{"a.bin", "", "application/octet-stream"},
		{"a.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"noext", "", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentTypeFor(tt.key, tt.given))
		})
	}
}

func TestObjectMetadata(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	meta := objectMetadata(map[string]string{"format": "xlsx"}, now)

	assert.Equal(t, "2025-03-01T12:00:00Z", meta["uploaded-at"])
	assert.Equal(t, "xlsx", meta["format"])
	assert.Len(t, meta["upload-id"], 36)
}
