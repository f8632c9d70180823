package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadSize bounds files accepted by DataURLUploader.
const MaxUploadSize = 10 << 20

// Uploader stores a file and returns a durable URL for it.
type Uploader interface {
	UploadFile(ctx context.Context, path string) (string, error)
}

// DataURLUploader inlines the file as a data: URL. It needs no server,
// which makes it the uploader of the offline mode.
type DataURLUploader struct{}

var _ Uploader = DataURLUploader{}

func (DataURLUploader) UploadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadSize {
		return "", fmt.Errorf("upload %s exceeds %d bytes", path, MaxUploadSize)
	}

	mime := mimetype.Detect(data)
	return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
