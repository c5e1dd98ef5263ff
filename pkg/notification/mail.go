package notification

import (
	"fmt"
	"net/smtp"
	"strings"
)

type MailConfig struct {
	Host     string `env:"MAIL_HOST"`
	Port     int64  `env:"MAIL_PORT"`
	Username string `env:"MAIL_USERNAME"`
	Password string `env:"MAIL_PASSWORD"`
	From     string `env:"MAIL_FROM"`
}

// Mailer is what handlers and listeners depend on; tests swap in a fake.
type Mailer interface {
	Send(to, subject, body string) error
}

// MailNotification sends plain-text mail over SMTP.
type MailNotification struct {
	cfg MailConfig
}

func NewMailNotification(cfg MailConfig) *MailNotification {
	return &MailNotification{cfg: cfg}
}

func (m *MailNotification) Send(to, subject, body string) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("mail host not configured")
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}

// AlertMailData carries the fields rendered into an emergency broadcast.
type AlertMailData struct {
	Name     string
	Email    string
	Phone    string
	Alert    string
	Message  string
	Lat, Lng float64
}

func (d AlertMailData) LocationURL() string {
	return fmt.Sprintf("https://www.google.com/maps/place/%v,%v", d.Lat, d.Lng)
}

// SendAlertMessage delivers one emergency broadcast to a single contact.
func SendAlertMessage(m Mailer, to string, data AlertMailData) error {
	body := fmt.Sprintf(
		"%s needs help.\n\nAlert: %s\nMessage: %s\n\nContact: %s / %s\nLocation: %s\n",
		data.Name, data.Alert, data.Message, data.Phone, data.Email, data.LocationURL(),
	)
	return m.Send(to, "Emergency Message", body)
}

// SendWelcomeEmail greets a newly registered account.
func SendWelcomeEmail(m Mailer, to, name string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour CRESS account has been created and is pending review.\n", name)
	return m.Send(to, "Welcome to CRESS", body)
}
