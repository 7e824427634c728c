package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email sends a plain text message over SMTP.
type Email struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string

	// SendMail defaults to smtp.SendMail.
	SendMail SendMailFunc
}

func (e *Email) Notify(_ context.Context, event Event) error {
	to := e.To
	if len(to) == 0 {
		to = []string{e.From}
	}

	var auth smtp.Auth
	if e.Username != "" {
		auth = smtp.PlainAuth("", e.Username, e.Password, e.Host)
	}

	send := e.SendMail
	if send == nil {
		send = smtp.SendMail
	}

	addr := net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
	if err := send(addr, auth, e.From, to, e.message(event, to)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (e *Email) message(event Event, to []string) []byte {
	subject := fmt.Sprintf("Query %s finished: %s", event.QueryName, event.Status)

	var body strings.Builder
	fmt.Fprintf(&body, "Query: %s\r\n", event.QueryName)
	fmt.Fprintf(&body, "Status: %s\r\n", event.Status)
	fmt.Fprintf(&body, "Duration: %.2fs\r\n", event.ExecutionTime)
	fmt.Fprintf(&body, "Rows: %d\r\n", event.ResultCount)
	if !event.Succeeded() {
		fmt.Fprintf(&body, "Error: %s\r\n", event.ErrorMessage)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body.String())
	return []byte(msg.String())
}
