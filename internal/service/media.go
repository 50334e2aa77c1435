package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"telehealth/internal/config"
	"telehealth/internal/domain"
	"telehealth/internal/port"
)

// Object key folders under a patient's prefix.
const (
	mediaReadings      = "readings"
	mediaPrescriptions = "prescriptions"
)

// Upload is an uploaded photo or document held in memory.
type Upload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// mediaStore validates uploads and keeps originals in object storage.
type mediaStore struct {
	storage  port.ObjectStorage
	bucket   string
	maxBytes int64
	expiry   int64
	logger   *slog.Logger
}

func newMediaStore(storage port.ObjectStorage, cfg *config.S3Config, logger *slog.Logger) *mediaStore {
	return &mediaStore{
		storage:  storage,
		bucket:   cfg.Bucket,
		maxBytes: cfg.MaxFileSizeMB * 1024 * 1024,
		expiry:   cfg.PresignExpiry,
		logger:   logger,
	}
}

// validate checks the size and sniffs the content type from the bytes. The
// declared type is ignored; clients routinely send octet-stream.
func (m *mediaStore) validate(u *Upload) (string, error) {
	if len(u.Data) == 0 {
		return "", domain.ErrUnsupportedFileType
	}
	if m.maxBytes > 0 && int64(len(u.Data)) > m.maxBytes {
		return "", domain.ErrFileTooLarge
	}
	detected := mimetype.Detect(u.Data).String()
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}
	if _, ok := domain.AllowedContentTypes[detected]; !ok {
		return "", domain.ErrUnsupportedFileType
	}
	return detected, nil
}

// objectKey returns patients/{patientID}/{folder}/{objectID}.{ext}.
func objectKey(patientID uuid.UUID, folder string, objectID uuid.UUID, contentType string) string {
	ext := "bin"
	if ft, ok := domain.AllowedContentTypes[contentType]; ok {
		ext = string(ft)
	}
	return fmt.Sprintf("patients/%s/%s/%s.%s", patientID, folder, objectID, ext)
}

func (m *mediaStore) put(ctx context.Context, patientID uuid.UUID, folder string, data []byte, contentType string) (string, error) {
	key := objectKey(patientID, folder, uuid.New(), contentType)
	_, err := m.storage.Upload(ctx, port.UploadInput{
		Bucket:      m.bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        int64(len(data)),
	})
	if err != nil {
		m.logger.Error("media.put: upload failed", "key", key, "error", err)
		return "", domain.ErrUploadFailed
	}
	return key, nil
}

// remove deletes an object whose database row could not be written.
func (m *mediaStore) remove(ctx context.Context, key string) {
	if err := m.storage.Delete(ctx, m.bucket, key); err != nil {
		m.logger.Warn("media.remove: orphaned object", "key", key, "error", err)
	}
}

func (m *mediaStore) url(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", domain.ErrNotFound
	}
	return m.storage.GetPresignedURL(ctx, m.bucket, key, m.expiry)
}
