// Package export writes health readings as CSV or XLSX spreadsheets.
package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"telehealth/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ParseFormat accepts "csv" or "xlsx", case-insensitively. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", domain.ErrInvalidExportFormat
}

// columns defines the header row.
var columns = []string{
	"Recorded At",
	"Type",
	"Systolic",
	"Diastolic",
	"Value",
	"Unit",
	"Source",
	"Confidence",
	"Extraction Status",
}

// readingToRow converts a reading to a row. Missing measurements stay empty.
func readingToRow(r *domain.HealthReading) []string {
	return []string{
		r.RecordedAt.UTC().Format(time.RFC3339),
		string(r.Type),
		formatNumber(r.Systolic),
		formatNumber(r.Diastolic),
		formatNumber(r.Value),
		r.Unit,
		string(r.Source),
		formatNumber(r.Confidence),
		string(r.ExtractionStatus),
	}
}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces characters unsafe in Content-Disposition with _
// and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "readings"
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name string, f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), f)
}
