package mail

import (
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/buyer-leads/internal/entity"
)

// MaxReportedErrors caps the row errors listed in a report email.
const MaxReportedErrors = 50

type ImportReportData struct {
	Outcome   string
	Inserted  int
	Errors    []entity.RowError
	Truncated int
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	Dialer Dialer
	From   string
}
