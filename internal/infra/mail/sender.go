package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

var importReportTmpl = template.Must(template.New("import_report").Parse(
	`Your buyer import finished: {{.Outcome}}.

Inserted: {{.Inserted}}
Errors:   {{len .Errors}}{{if .Truncated}} (+{{.Truncated}} more){{end}}
{{range .Errors}}
  row {{.Row}}: {{.Message}}{{end}}
`))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Dialer: gomail.NewDialer(host, port, user, password),
		From:   from,
	}
}

// NotifyImport emails the import summary to the importer.
func (s *EmailSender) NotifyImport(ctx context.Context, to string, summary entity.ImportSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := ImportReportData{
		Outcome:  summary.Outcome,
		Inserted: summary.Inserted,
		Errors:   summary.Errors,
	}
	if len(data.Errors) > MaxReportedErrors {
		data.Truncated = len(data.Errors) - MaxReportedErrors
		data.Errors = data.Errors[:MaxReportedErrors]
	}

	var body bytes.Buffer
	if err := importReportTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render import report: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Buyer import %s: %d inserted", summary.Outcome, summary.Inserted))
	m.SetBody("text/plain", body.String())

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	return nil
}
