package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/clubportal/internal/metrics"
)

// ErrNoRecipients is returned for a campaign without recipients.
var ErrNoRecipients = errors.New("campaign has no recipients")

// Recipient is one addressee of a campaign. Variables fill the body and
// subject placeholders; name is always available as {{name}}.
type Recipient struct {
	Email     string            `json:"email" validate:"required,email"`
	Name      string            `json:"name"`
	Variables map[string]string `json:"variables,omitempty"`
}

// Campaign is a markdown email sent to many recipients.
type Campaign struct {
	Subject      string      `json:"subject" validate:"required"`
	BodyMarkdown string      `json:"body_markdown" validate:"required"`
	Recipients   []Recipient `json:"recipients" validate:"dive"`
}

// Failure is one recipient the email function did not accept.
type Failure struct {
	Email string `json:"email"`
	Err   string `json:"error"`
}

// Report summarizes a campaign run.
type Report struct {
	Attempted int       `json:"attempted"`
	Sent      int       `json:"sent"`
	Failures  []Failure `json:"failures,omitempty"`
}

// Failed returns the number of recipients that were not reached.
func (r Report) Failed() int {
	return len(r.Failures)
}

// SendCampaign renders the body once, then sends one message per recipient
// in order. A failed recipient is logged and recorded, and the batch goes on.
// Only a cancelled context stops the run early.
func SendCampaign(ctx context.Context, sender Sender, c Campaign) (Report, error) {
	if len(c.Recipients) == 0 {
		return Report{}, ErrNoRecipients
	}

	body, err := RenderMarkdown(c.BodyMarkdown)
	if err != nil {
		return Report{}, err
	}

	var report Report
	for _, r := range c.Recipients {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("campaign interrupted after %d recipients: %w", report.Attempted, err)
		}
		report.Attempted++

		vars := recipientVars(r)
		msg := Message{
			To:        strings.TrimSpace(r.Email),
			Subject:   ResolveText(c.Subject, vars),
			Body:      Resolve(body, vars),
			Variables: vars,
		}
		if err := sender.Send(ctx, msg); err != nil {
			slog.Warn("Campaign email failed", "recipient", msg.To, "error", err)
			report.Failures = append(report.Failures, Failure{Email: msg.To, Err: err.Error()})
			metrics.Emails.WithLabelValues(metrics.EmailFailed).Inc()
			continue
		}
		report.Sent++
		metrics.Emails.WithLabelValues(metrics.EmailSent).Inc()
	}

	slog.Info("Campaign sent", "attempted", report.Attempted, "sent", report.Sent, "failed", report.Failed())
	return report, nil
}

func recipientVars(r Recipient) map[string]string {
	vars := make(map[string]string, len(r.Variables)+1)
	for k, v := range r.Variables {
		vars[k] = v
	}
	if _, ok := vars["name"]; !ok {
		vars["name"] = r.Name
	}
	return vars
}
