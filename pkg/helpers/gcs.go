package helpers

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// Object describes one upload.
type Object struct {
	Bucket       string
	Path         string
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// UploadObject streams r into the object and returns its public URL.
func UploadObject(ctx context.Context, client *storage.Client, obj Object, r io.Reader) (string, error) {
	wc := client.Bucket(obj.Bucket).Object(obj.Path).NewWriter(ctx)
	wc.ContentType = obj.ContentType
	wc.CacheControl = obj.CacheControl
	wc.Metadata = obj.Metadata
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return PublicURL(obj.Bucket, obj.Path), nil
}

// PublicURL builds a public URL for an object (assuming public read access or signed URLs)
func PublicURL(bucket, objectPath string) string {
	segs := strings.Split(objectPath, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, strings.Join(segs, "/"))
}
