package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"telehealth/internal/service"
)

// maxUploadBytes caps what a handler buffers; the services apply the configured limit.
const maxUploadBytes = 32 << 20

var errNoFile = errors.New("no file")

// readUpload reads a multipart file field into memory. It returns errNoFile when
// the field is absent or the request is not multipart.
func readUpload(c *gin.Context, field string) (*service.Upload, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, errNoFile
		}
		return nil, fmt.Errorf("reading %s: %w", field, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", field, err)
	}
	return &service.Upload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}
