package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"github.com/dmitrijs2005/rentfinder/internal/filex"
)

type formField struct {
	name  string
	value string
}

type formFile struct {
	field string
	file  filex.File
}

func multipartBody(fields []formField, files []formFile) body {
	return func() (io.Reader, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)

		for _, f := range fields {
			if err := w.WriteField(f.name, f.value); err != nil {
				return nil, "", err
			}
		}

		for _, f := range files {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.file.Name))
			h.Set("Content-Type", f.file.ContentType)
			part, err := w.CreatePart(h)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(f.file.Data); err != nil {
				return nil, "", err
			}
		}

		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	}
}
