// Package prompt holds the Twig prompt templates used for structured extraction.
package prompt

import (
	"embed"
	"fmt"
)

// Template names.
const (
	Prescription      = "prescription"
	PrescriptionImage = "prescription_image"
	Chat              = "chat"
	DeviceReading     = "device_reading"
)

//go:embed templates/*.twig
var templates embed.FS

// Template returns the source of the named template.
func Template(name string) (string, error) {
	b, err := templates.ReadFile("templates/" + name + ".twig")
	if err != nil {
		return "", fmt.Errorf("prompt template %q not found", name)
	}
	return string(b), nil
}

// MustTemplate is Template for names known at compile time.
func MustTemplate(name string) string {
	tpl, err := Template(name)
	if err != nil {
		panic(err)
	}
	return tpl
}
