package rest

import (
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/server/media"
)

const (
	maxImages    = 10
	maxFormBytes = (maxImages + 1) * media.MaxFileSize
	formMemory   = 8 << 20
)

func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return common.ErrTooLarge
		}
		return common.Validationf("malformed multipart form")
	}
	return nil
}

// uploads holds the files of one form field, open for reading.
type uploads struct {
	files   []media.File
	closers []io.Closer
}

func (u *uploads) Close() {
	for _, c := range u.closers {
		_ = c.Close()
	}
}

func openUploads(r *http.Request, field string) (*uploads, error) {
	u := &uploads{}
	if r.MultipartForm == nil {
		return u, nil
	}

	headers := r.MultipartForm.File[field]
	if len(headers) > maxImages {
		return nil, common.Validationf("at most %d images are allowed", maxImages)
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			u.Close()
			return nil, common.Validationf("unreadable file %s", fh.Filename)
		}
		u.closers = append(u.closers, f)
		u.files = append(u.files, toMediaFile(fh, f))
	}
	return u, nil
}

func toMediaFile(fh *multipart.FileHeader, body io.Reader) media.File {
	return media.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        body,
	}
}

func formFloat(r *http.Request, key string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue(key)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, common.Validationf("%s must be a number", key)
	}
	return v, nil
}

func formInt(r *http.Request, key string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	if err != nil {
		return 0, common.Validationf("%s must be a whole number", key)
	}
	return v, nil
}
