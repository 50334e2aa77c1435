package service_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"telehealth/internal/config"
	"telehealth/internal/domain"
	"telehealth/internal/logging"
)

var discard = logging.Discard()

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret-key-for-unit-tests",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 168 * time.Hour,
		Issuer:             "telehealth-test",
	}
}

func testS3Config() *config.S3Config {
	return &config.S3Config{Bucket: "test-bucket", MaxFileSizeMB: 1, PresignExpiry: 600}
}

func hashPassword(password string) string {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(hash)
}

// assignUserID mimics the database filling in the primary key on insert.
func assignUserID(args mock.Arguments) {
	args.Get(1).(*domain.User).ID = uuid.New()
}

func ptr[T any](v T) *T { return &v }

// Minimal magic-number payloads for mimetype detection.
var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
)
