// Package delivery sends rendered reports to patients over SMTP and builds
// WhatsApp contact links for follow-up scheduling.
package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

const defaultRatePerMin = 30

// SMTPMailer delivers report documents as email attachments. Sends are rate
// limited and wrapped in a circuit breaker so a failing mail relay cannot
// stall intake processing.
type SMTPMailer struct {
	config  domain.SMTPConfig
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *logrus.Logger

	// send is swappable for tests.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a mailer from delivery configuration.
func NewSMTPMailer(config domain.DeliveryConfig, logger *logrus.Logger) *SMTPMailer {
	perMin := config.RatePerMin
	if perMin <= 0 {
		perMin = defaultRatePerMin
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "SMTP",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Mail circuit breaker state changed")
		},
	})

	return &SMTPMailer{
		config:  config.SMTP,
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin),
		logger:  logger,
		send:    smtp.SendMail,
	}
}

// SendReport emails the rendered document to the patient as a PDF attachment.
func (m *SMTPMailer) SendReport(ctx context.Context, to, patientName string, document []byte, filename string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for send slot: %w", err)
	}

	msg, err := m.buildMessage(to, patientName, document, filename)
	if err != nil {
		return fmt.Errorf("building mail message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	_, err = m.breaker.Execute(func() (interface{}, error) {
		return nil, m.send(addr, auth, m.config.Sender, []string{to}, msg)
	})
	if err != nil {
		return fmt.Errorf("sending report mail: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"to":       to,
		"filename": filename,
		"bytes":    len(document),
	}).Info("Report delivered by email")

	return nil
}

// buildMessage assembles a multipart MIME message with a text body and the
// report attached as a PDF.
func (m *SMTPMailer) buildMessage(to, patientName string, document []byte, filename string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.config.Sender)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: Your PCOS Assessment Report\r\n")
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	// Reset so the multipart writer starts after the headers.
	body := buf.String()
	buf.Reset()
	buf.WriteString(body)

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	greeting := patientName
	if greeting == "" {
		greeting = "there"
	}
	fmt.Fprintf(textPart, "Dear %s,\r\n\r\nPlease find your PCOS assessment report attached.\r\n", greeting)

	attachHeader := textproto.MIMEHeader{}
	attachHeader.Set("Content-Type", "application/pdf")
	attachHeader.Set("Content-Transfer-Encoding", "base64")
	attachHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	attachPart, err := writer.CreatePart(attachHeader)
	if err != nil {
		return nil, err
	}

	encoder := base64.NewEncoder(base64.StdEncoding, attachPart)
	if _, err := encoder.Write(document); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
