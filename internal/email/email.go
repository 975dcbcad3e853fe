// Package email is the outbound notification gateway. Any transport failure
// is reported as a plain error; callers treat all of them as one uniform
// delivery failure.
package email

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sportlink-dev/sportlink/internal/config"
	"github.com/sportlink-dev/sportlink/internal/logger"
)

type Notifier struct {
	config     *config.Email
	appBaseURL string
	auth       smtp.Auth
}

func New(cfg *config.Email, appBaseURL string) *Notifier {
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPServer)
	return &Notifier{
		config:     cfg,
		appBaseURL: appBaseURL,
		auth:       auth,
	}
}

// SendVerification mails the link proving control of the address. The token
// and email ride as query parameters so the frontend can submit them back.
func (n *Notifier) SendVerification(recipient, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s&email=%s", n.appBaseURL, url.QueryEscape(token), url.QueryEscape(recipient))
	body := fmt.Sprintf(`Hello,

Welcome to sportlink! Please confirm your email address by opening the link below within 24 hours:

%s

If you did not sign up, you can ignore this email.
`, link)
	return n.send(recipient, "Confirm your sportlink account", body)
}

func (n *Notifier) SendWelcome(recipient string) error {
	body := `Hello,

Your email is confirmed and your sportlink account is ready. Log in, fill out your profile and find a partner for your next game.

See you on the court!
`
	return n.send(recipient, "Welcome to sportlink", body)
}

func (n *Notifier) SendPasswordReset(recipient, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s&email=%s", n.appBaseURL, url.QueryEscape(token), url.QueryEscape(recipient))
	body := fmt.Sprintf(`Hello,

We received a request to reset your sportlink password. Open the link below within 1 hour to choose a new one:

%s

If you did not request this, please ignore this email.
`, link)
	return n.send(recipient, "Reset your sportlink password", body)
}

func (n *Notifier) send(recipient, subject, body string) error {
	msg := n.buildMessage(recipient, subject, body)
	address := fmt.Sprintf("%s:%d", n.config.SMTPServer, n.config.SMTPPort)

	// Port 465 = implicit TLS, otherwise STARTTLS
	if n.config.SMTPPort == 465 {
		return n.sendImplicitTLS(address, recipient, msg)
	}
	return n.sendSTARTTLS(address, recipient, msg)
}

func (n *Notifier) timeout() time.Duration {
	timeout := time.Duration(n.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return timeout
}

// sendImplicitTLS sends email over a connection that is TLS from the start (port 465).
func (n *Notifier) sendImplicitTLS(address, recipient string, msg []byte) error {
	tlsConfig := &tls.Config{ServerName: n.config.SMTPServer}

	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: n.timeout()}, "tcp", address, tlsConfig)
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server (implicit TLS)", "address", address, "error", err)
		return err
	}
	defer conn.Close()

	return n.sendOverConn(conn, recipient, msg)
}

// sendSTARTTLS sends email by upgrading a plain connection to TLS (port 587).
func (n *Notifier) sendSTARTTLS(address, recipient string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", address, n.timeout())
	if err != nil {
		logger.Log.Error("failed to connect to SMTP server", "address", address, "error", err)
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, n.config.SMTPServer)
	if err != nil {
		logger.Log.Error("failed to create SMTP client", "error", err)
		return err
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: n.config.SMTPServer}
	if err = client.StartTLS(tlsConfig); err != nil {
		logger.Log.Error("failed to start TLS", "error", err)
		return err
	}

	return n.sendViaClient(client, recipient, msg)
}

func (n *Notifier) sendOverConn(conn net.Conn, recipient string, msg []byte) error {
	client, err := smtp.NewClient(conn, n.config.SMTPServer)
	if err != nil {
		logger.Log.Error("failed to create SMTP client", "error", err)
		return err
	}
	defer client.Close()

	return n.sendViaClient(client, recipient, msg)
}

// sendViaClient performs auth, sets sender/recipient, and sends the message body.
func (n *Notifier) sendViaClient(client *smtp.Client, recipient string, msg []byte) error {
	if err := client.Auth(n.auth); err != nil {
		logger.Log.Error("SMTP authentication failed", "error", err)
		return err
	}

	if err := client.Mail(n.config.Username); err != nil {
		logger.Log.Error("failed to set sender", "error", err)
		return err
	}

	if err := client.Rcpt(recipient); err != nil {
		logger.Log.Error("failed to set recipient", "error", err)
		return err
	}

	w, err := client.Data()
	if err != nil {
		logger.Log.Error("failed to get data writer", "error", err)
		return err
	}

	if _, err = w.Write(msg); err != nil {
		logger.Log.Error("failed to write message", "error", err)
		return err
	}

	if err = w.Close(); err != nil {
		logger.Log.Error("failed to close data writer", "error", err)
		return err
	}

	return client.Quit()
}

func generateMessageID(domain string) string {
	return fmt.Sprintf("<%s@%s>", uuid.New().String(), domain)
}

func (n *Notifier) buildMessage(recipient, subject, body string) []byte {
	encodedSubject := mime.QEncoding.Encode("utf-8", subject)
	encodedSenderName := mime.QEncoding.Encode("utf-8", n.config.SenderName)

	msgID := generateMessageID("sportlink.app")
	date := time.Now().Format(time.RFC1123Z)

	return fmt.Appendf(nil,
		"Message-ID: %s\r\n"+
			"Date: %s\r\n"+
			"To: %s\r\n"+
			"From: %s <%s>\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n"+
			"%s",
		msgID, date, recipient, encodedSenderName, n.config.Username, encodedSubject, body,
	)
}
