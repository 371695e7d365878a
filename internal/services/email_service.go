package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, displayName string) error
	SendTransferRequestedEmail(email, fromName, workflowName string) error
	SendTransferResolvedEmail(email, workflowName, outcome string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email %q to %s: %w", subject, to, err)
	}
	return nil
}

func (s *emailService) SendWelcomeEmail(email, displayName string) error {
	body := fmt.Sprintf(`
		<h2>Welcome aboard, %s!</h2>
		<p>Your staff account has been created. You can now sign in and see your
		assigned checklists for today.</p>
	`, displayName)
	return s.send(email, "Welcome to the team!", body)
}

func (s *emailService) SendTransferRequestedEmail(email, fromName, workflowName string) error {
	body := fmt.Sprintf(`
		<h3>Task transfer waiting on you</h3>
		<p>%s asked you to take over their tasks in <strong>%s</strong>.</p>
		<p>Open the app to accept or decline.</p>
	`, fromName, workflowName)
	return s.send(email, "Task transfer request", body)
}

func (s *emailService) SendTransferResolvedEmail(email, workflowName, outcome string) error {
	body := fmt.Sprintf(`
		<h3>Transfer %s</h3>
		<p>Your transfer request for <strong>%s</strong> has been %s.</p>
	`, outcome, workflowName, outcome)
	return s.send(email, "Task transfer "+outcome, body)
}
