package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/common"
)

// EndpointUploader posts images to an unsigned upload endpoint that answers
// with a JSON body carrying secure_url.
type EndpointUploader struct {
	url    string
	preset string
	client *http.Client
}

func NewEndpointUploader(url, preset string, timeout time.Duration) *EndpointUploader {
	return &EndpointUploader{
		url:    url,
		preset: preset,
		client: &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

func (u *EndpointUploader) UploadOne(ctx context.Context, f File) (string, error) {
	if err := Validate(f); err != nil {
		return "", err
	}

	body, contentType, err := u.encode(f)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUploadFailure, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUploadFailure, err)
	}
	defer resp.Body.Close()

	// The endpoint signals failure by leaving secure_url out, whatever the
	// status code says.
	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.SecureURL == "" {
		return "", fmt.Errorf("%w: %s answered %d without secure_url", common.ErrUploadFailure, u.url, resp.StatusCode)
	}
	return out.SecureURL, nil
}

func (u *EndpointUploader) encode(f File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	h.Set("Content-Type", f.MIMEType())
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f.Body); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	if err := w.WriteField("upload_preset", u.preset); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
