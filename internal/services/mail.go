package services

import (
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"
)

// MailService sends transactional email over SMTP. Delivery is best-effort
// everywhere it is used: callers log failures and never propagate them.
type MailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailService builds a MailService. An empty host leaves the service in
// a disabled mode where sends are logged and skipped.
func NewMailService(host string, port int, username, password, from string) *MailService {
	svc := &MailService{from: from}
	if host != "" {
		svc.dialer = gomail.NewDialer(host, port, username, password)
	}
	return svc
}

// Send delivers a plain-text message to a single recipient.
func (s *MailService) Send(to, subject, body string) error {
	if s == nil || s.dialer == nil {
		log.Printf("[Mail] SMTP not configured, skipping message to %s (%s)", to, subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// SendResetCode mails a one-time password-reset code.
func (s *MailService) SendResetCode(to, code string) error {
	body := fmt.Sprintf(`Hi there,

Your verification code for resetting your password is:

%s

This code expires in 5 minutes.
If you did not request this, please ignore this email.`, code)

	return s.Send(to, "Reset Your Password - Horologie", body)
}

// OrderConfirmation carries what the confirmation mail needs; the order
// row itself stays in the handlers package.
type OrderConfirmation struct {
	OrderID      string
	CustomerName string
	TotalPrice   float64
	DashboardURL string
}

// SendOrderConfirmation mails the post-checkout confirmation.
func (s *MailService) SendOrderConfirmation(to string, conf OrderConfirmation) error {
	subject := fmt.Sprintf("CONFIRMED: Your Acquisition | Order #%s", conf.OrderID)

	body := fmt.Sprintf(`Dear %s,

It is with distinct pleasure that we confirm your recent acquisition from the Horologie Maison.

Your investment details are securely recorded below:
------------------------------------------------------
ACQUISITION REFERENCE: #%s
TOTAL INVESTMENT: %.2f
------------------------------------------------------

Your digital Certificate of Authenticity has been minted. You may access it from your private vault:
%s

Yours in Excellence,
The Horologie Private Concierge`,
		conf.CustomerName, conf.OrderID, conf.TotalPrice, conf.DashboardURL)

	return s.Send(to, strings.TrimSpace(subject), body)
}
