package notify

import (
	"errors"
	"fmt"
	"log"

	"github.com/wneessen/go-mail"

	"github.com/gridstate/load-logger/src/loadlogger/config"
	"github.com/gridstate/load-logger/src/loadlogger/data"
	"github.com/gridstate/load-logger/src/loadlogger/timeutil"
)

const subjectPrefix = "[Load Logger] "

// Notifier sends operator alerts over SMTP. Connection parameters resolve
// through the settings service on every send so runtime overrides apply
// without a restart; the password is env-only.
type Notifier struct {
	settings *data.Settings
	password string
}

func New(settings *data.Settings, cfg config.Config) *Notifier {
	return &Notifier{settings: settings, password: cfg.SMTPPassword}
}

// Enabled reports whether the configuration is complete enough to deliver.
func (n *Notifier) Enabled() bool {
	return n.configError() == nil
}

// configError names the first missing configuration piece so operators can
// self-diagnose from the API response alone.
func (n *Notifier) configError() error {
	if n.settings.Get("smtp_host") == "" {
		return errors.New("smtp_host is not configured")
	}
	if n.settings.Get("smtp_user") == "" {
		return errors.New("smtp_user is not configured")
	}
	if n.settings.Get("notification_email") == "" {
		return errors.New("notification_email is not configured")
	}
	return nil
}

// Send delivers one message with plain-text and HTML variants. Errors are
// returned, never panicked: a notification failure must not take down the
// import run that triggered it.
func (n *Notifier) Send(subject, body, htmlBody string) error {
	if err := n.configError(); err != nil {
		return err
	}

	from := n.settings.Get("smtp_from")
	if from == "" {
		from = n.settings.Get("smtp_user")
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return fmt.Errorf("notify: from address: %w", err)
	}
	if err := msg.To(n.settings.Get("notification_email")); err != nil {
		return fmt.Errorf("notify: to address: %w", err)
	}
	msg.Subject(subjectPrefix + subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	if htmlBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)
	}

	client, err := mail.NewClient(n.settings.Get("smtp_host"),
		mail.WithPort(n.settings.GetInt("smtp_port")),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.settings.Get("smtp_user")),
		mail.WithPassword(n.password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("notify: smtp client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	log.Printf("notify: email sent: %s", subject)
	return nil
}

// SendFailureAlert reports a run of consecutive import failures.
func (n *Notifier) SendFailureAlert(message string) error {
	ts := timeutil.Now().Format("2006-01-02 15:04:05")

	body := fmt.Sprintf(`Load Logger Alert

Time: %s
Status: Import Failure

%s

---
This is an automated message from Load Logger.
Check the dashboard for more details.
`, ts, message)

	htmlBody := fmt.Sprintf(`<html><body>
<h2>Load Logger Alert</h2>
<div style="background-color:#fee;border:1px solid #c00;padding:15px;border-radius:5px;">
<strong style="color:#c00;">Import Failure</strong>
<p>%s</p>
<div style="color:#666;font-size:12px;">Time: %s</div>
</div>
<p style="color:#666;font-size:12px;">This is an automated message from Load Logger.<br>
Check the dashboard for more details.</p>
</body></html>`, message, ts)

	return n.Send("Import Failure Alert", body, htmlBody)
}

// SendRecoveryNotice announces that imports resumed after a failure streak.
func (n *Notifier) SendRecoveryNotice() error {
	ts := timeutil.Now().Format("2006-01-02 15:04:05")

	body := fmt.Sprintf(`Load Logger Notice

Time: %s
Status: Import Recovered

Data imports have resumed successfully after previous failures.

---
This is an automated message from Load Logger.
`, ts)

	return n.Send("Import Recovered", body, "")
}

// SendTest verifies the notification configuration end to end.
func (n *Notifier) SendTest() error {
	body := `Load Logger Test

This is a test email to verify your notification settings are configured correctly.

If you received this email, notifications are working.

---
Load Logger
`
	return n.Send("Test Notification", body, "")
}
