package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Option("missingkey=error").ParseFS(templateFS, "templates/*.html"))

var subjects = map[string]string{
	"verification-code": "Your verification code",
	"password-reset":    "Reset your password",
}

// Render returns the subject and HTML body for templateID.
func Render(templateID string, vars map[string]string) (subject, body string, err error) {
	subject, ok := subjects[templateID]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", templateID)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, templateID+".html", vars); err != nil {
		return "", "", fmt.Errorf("render %s: %w", templateID, err)
	}
	return subject, buf.String(), nil
}
