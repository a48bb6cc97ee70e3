package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"github.com/glassroot/glassroot/internal/apiclient"
	"github.com/glassroot/glassroot/internal/apperr"
)

// ErrorDetails is the normalized form of an error shown to the user.
type ErrorDetails struct {
	Message       string `json:"message"`
	Status        int    `json:"status,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

// DetailsOf normalizes err with a redacted message. API errors keep their envelope fields;
// local errors carry the upstream status when one is known.
func DetailsOf(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{Message: "Unknown error"}
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return ErrorDetails{
			Message:       apperr.Redact(apiErr.Message),
			Status:        apiErr.Status,
			Timestamp:     apiErr.Timestamp,
			CorrelationID: apiErr.CorrelationID,
		}
	}
	d := ErrorDetails{Message: apperr.Redact(err.Error())}
	var ue *apperr.UpstreamError
	if errors.As(err, &ue) && ue.StatusCode != 0 {
		d.Status = ue.StatusCode
	}
	return d
}

// RenderError writes err to w as a bordered panel.
func RenderError(w io.Writer, err error) {
	d := DetailsOf(err)
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8"))
	muted := r.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	panel := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#F38BA8")).
		Padding(0, 1)

	lines := []string{title.Render("Error"), d.Message}
	if d.Status != 0 {
		lines = append(lines, muted.Render(fmt.Sprintf("Status: %d", d.Status)))
	}
	if d.Timestamp != "" {
		lines = append(lines, muted.Render("Time: "+d.Timestamp))
	}
	if d.CorrelationID != "" {
		lines = append(lines, muted.Render("Correlation ID: "+d.CorrelationID))
	}
	fmt.Fprintln(w, panel.Render(strings.Join(lines, "\n")))
}

// ErrorReport returns err's details as indented JSON. Only the message is redacted, so the
// correlation id survives for support.
func ErrorReport(err error) (string, error) {
	data, jerr := json.MarshalIndent(DetailsOf(err), "", "  ")
	if jerr != nil {
		return "", fmt.Errorf("failed to encode error details: %w", jerr)
	}
	return string(data), nil
}

// CopyErrorDetails places the redacted JSON details of err on the system clipboard.
func CopyErrorDetails(err error) error {
	report, rerr := ErrorReport(err)
	if rerr != nil {
		return rerr
	}
	if cerr := clipboardWrite(report); cerr != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", cerr)
	}
	return nil
}
