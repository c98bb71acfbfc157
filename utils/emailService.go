package utils

import (
	"fmt"
	"html"
	"net/http"
	"sync"
	"time"

	"adconnect/config"
	"adconnect/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailMessage is one outgoing mail.
type EmailMessage struct {
	ToName  string
	ToEmail string
	Subject string
	HTML    string
}

// EmailService delivers a message synchronously.
type EmailService interface {
	Send(msg EmailMessage) error
}

// Email is the service used by SendEmail. InitEmail picks SendGrid when an API
// key is configured.
var Email EmailService = NewConsoleEmailService()

// InitEmail configures the global email service from cfg.
func InitEmail(cfg *config.Config) EmailService {
	if cfg.SendgridAPIKey != "" {
		Email = NewSendgridEmailService(cfg.SendgridAPIKey, cfg.AppName, cfg.EmailSender)
		logger.Log.Info().Msg("email delivery via sendgrid")
	} else {
		Email = NewConsoleEmailService()
		logger.Log.Warn().Msg("SENDGRID_API_KEY not set, emails are only logged")
	}
	return Email
}

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type sendgridEmailService struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

func NewSendgridEmailService(key, appName, fromEmail string) EmailService {
	return &sendgridEmailService{
		key:        key,
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

func (svc *sendgridEmailService) Send(msg EmailMessage) error {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", msg.HTML))

	req := sendgrid.GetRequest(svc.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// ConsoleEmailService logs messages instead of delivering them and keeps them
// for inspection.
type ConsoleEmailService struct {
	mu   sync.Mutex
	sent []EmailMessage
}

func NewConsoleEmailService() *ConsoleEmailService {
	return &ConsoleEmailService{}
}

func (svc *ConsoleEmailService) Send(msg EmailMessage) error {
	logger.Log.Info().
		Str("to", msg.ToEmail).
		Str("subject", msg.Subject).
		Msg("email (console)")

	svc.mu.Lock()
	svc.sent = append(svc.sent, msg)
	svc.mu.Unlock()
	return nil
}

// Sent returns a copy of the messages sent so far.
func (svc *ConsoleEmailService) Sent() []EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]EmailMessage, len(svc.sent))
	copy(out, svc.sent)
	return out
}

// SendEmail delivers msg in the background; failures are logged.
func SendEmail(msg EmailMessage) {
	svc := Email
	if msg.ToEmail == "" || svc == nil {
		return
	}
	go func() {
		if err := svc.Send(msg); err != nil {
			logger.Log.Error().Err(err).Str("to", msg.ToEmail).Str("subject", msg.Subject).Msg("failed to send email")
		}
	}()
}

func appName() string {
	if config.AppConfig != nil && config.AppConfig.AppName != "" {
		return config.AppConfig.AppName
	}
	return "AdConnect"
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #0B3D2E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2933; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F5E9; padding: 15px; border-radius: 4px; border-left: 4px solid #2E7D32; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>%s</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; %d %s. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, html.EscapeString(appName()), title, bodyContent, time.Now().Year(), html.EscapeString(appName()))
}

// SendPaymentReceiptEmail confirms a completed M-Pesa payment and the
// subscription window it bought.
func SendPaymentReceiptEmail(email, name, packageName, receipt string, amount float64, endDate time.Time) {
	subject := "Payment Received: " + packageName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We have received your M-Pesa payment of <strong>KES %.2f</strong> for <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>M-Pesa receipt:</strong> %s<br>
			<strong>Access until:</strong> %s
		</div>
		<p>Thank you for learning with us.</p>
	`, html.EscapeString(name), amount, html.EscapeString(packageName), html.EscapeString(receipt), endDate.Format("January 2, 2006"))

	SendEmail(EmailMessage{ToName: name, ToEmail: email, Subject: subject, HTML: getEmailTemplate("Payment Confirmed", body)})
}

// SendSubscriptionExpiryReminder warns a student that access ends soon.
func SendSubscriptionExpiryReminder(email, name, packageName string, endDate time.Time) {
	subject := "Your subscription is expiring soon"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your subscription to <strong>%s</strong> expires on <strong>%s</strong>.</p>
		<p>Renew with M-Pesa before then to keep access to your courses.</p>
	`, html.EscapeString(name), html.EscapeString(packageName), endDate.Format("January 2, 2006"))

	SendEmail(EmailMessage{ToName: name, ToEmail: email, Subject: subject, HTML: getEmailTemplate("Subscription Expiring Soon", body)})
}

// SendSubscriptionExpiredEmail tells a student their access has ended.
func SendSubscriptionExpiredEmail(email, name, packageName string) {
	subject := "Your subscription has expired"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your subscription to <strong>%s</strong> has expired.</p>
		<p>You can renew at any time to regain access.</p>
	`, html.EscapeString(name), html.EscapeString(packageName))

	SendEmail(EmailMessage{ToName: name, ToEmail: email, Subject: subject, HTML: getEmailTemplate("Subscription Expired", body)})
}
