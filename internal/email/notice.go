// Package email formats emergency notifications for delivery by a sender.
package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"telehealth/internal/port"
)

// Message is a rendered email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// MapsURL returns a Google Maps link for the coordinates, or "" when either is missing.
func MapsURL(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return ""
	}
	return fmt.Sprintf("https://maps.google.com/?q=%.6f,%.6f", *lat, *lng)
}

// ComposeEmergency renders the notice sent to a patient's emergency contact.
func ComposeEmergency(n port.EmergencyNotice, appName string) Message {
	if appName == "" {
		appName = "Telehealth"
	}
	what := "pressed the SOS button"
	subjectKind := "SOS"
	if n.Kind == "fall" {
		what = "may have fallen"
		subjectKind = "Fall detected"
	}
	when := n.OccurredAt.UTC().Format(time.RFC1123)
	maps := MapsURL(n.Latitude, n.Longitude)

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n%s %s at %s.\n", n.ToName, n.PatientName, what, when)
	if n.Message != "" {
		fmt.Fprintf(&text, "\nMessage: %s\n", n.Message)
	}
	if maps != "" {
		fmt.Fprintf(&text, "\nLast known location: %s\n", maps)
	}
	fmt.Fprintf(&text, "\nPlease check on them right away.\n\n%s", appName)

	var body strings.Builder
	fmt.Fprintf(&body, `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #B91C1C;">%s: %s</h2>
  <p>Hi %s,</p>
  <p><strong>%s</strong> %s at %s.</p>
`, html.EscapeString(subjectKind), html.EscapeString(n.PatientName), html.EscapeString(n.ToName),
		html.EscapeString(n.PatientName), what, html.EscapeString(when))
	if n.Message != "" {
		fmt.Fprintf(&body, "  <p>Message: %s</p>\n", html.EscapeString(n.Message))
	}
	if maps != "" {
		fmt.Fprintf(&body, `  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #B91C1C; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Open location</a>
  </p>
`, maps)
	}
	fmt.Fprintf(&body, `  <p>Please check on them right away.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`, html.EscapeString(appName))

	return Message{
		Subject: fmt.Sprintf("[%s] %s needs help", subjectKind, n.PatientName),
		Text:    text.String(),
		HTML:    body.String(),
	}
}
