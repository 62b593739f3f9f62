// Package media validates images and forwards them to remote storage,
// returning public URLs.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/rentfinder/internal/common"
)

// MaxFileSize is the largest accepted image, 5 MiB.
const MaxFileSize int64 = 5 << 20

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// File is an image about to be uploaded.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MIMEType returns the declared content type, falling back to the file
// extension when none was sent.
func (f File) MIMEType() string {
	ct := f.ContentType
	if ct == "" {
		ct = mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name)))
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// Validate rejects files that are not jpeg, png or webp, and files larger
// than MaxFileSize. It never touches the network.
func Validate(f File) error {
	if _, ok := allowedTypes[f.MIMEType()]; !ok {
		return fmt.Errorf("%w: %s", common.ErrUnsupportedType, f.Name)
	}
	if f.Size > MaxFileSize {
		return fmt.Errorf("%w: %s is %d bytes", common.ErrTooLarge, f.Name, f.Size)
	}
	return nil
}

// Uploader sends one validated file to remote storage.
type Uploader interface {
	UploadOne(ctx context.Context, f File) (string, error)
}

// UploadMany uploads files in order, one at a time. Each file is validated
// right before it is sent, so a bad file stops the batch without touching the
// files after it. Files already sent stay uploaded.
func UploadMany(ctx context.Context, u Uploader, files []File) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := u.UploadOne(ctx, f)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
