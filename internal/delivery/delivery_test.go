package delivery

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

func newTestMailer(t *testing.T) *SMTPMailer {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewSMTPMailer(domain.DeliveryConfig{
		SMTP: domain.SMTPConfig{
			Host:   "mail.example.com",
			Port:   587,
			Sender: "reports@example.com",
		},
		RatePerMin: 60,
	}, logger)
}

func TestSMTPMailer_SendReport(t *testing.T) {
	mailer := newTestMailer(t)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	mailer.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotFrom = from
		gotTo = to
		gotMsg = msg
		return nil
	}

	document := []byte("%PDF-1.4 test document")
	err := mailer.SendReport(context.Background(), "patient@example.com", "Ayesha Khan", document, "Ayesha_Khan_pcos_report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, "reports@example.com", gotFrom)
	assert.Equal(t, []string{"patient@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Subject: Your PCOS Assessment Report")
	assert.Contains(t, msg, "Dear Ayesha Khan")
	assert.Contains(t, msg, "application/pdf")
	assert.Contains(t, msg, `filename="Ayesha_Khan_pcos_report.pdf"`)
}

func TestSMTPMailer_SendFailure(t *testing.T) {
	mailer := newTestMailer(t)
	mailer.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("relay refused")
	}

	err := mailer.SendReport(context.Background(), "patient@example.com", "Ayesha", []byte("doc"), "report.pdf")
	assert.Error(t, err)
}

func TestSMTPMailer_BreakerOpensOnRepeatedFailure(t *testing.T) {
	mailer := newTestMailer(t)

	calls := 0
	mailer.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		return errors.New("relay down")
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = mailer.SendReport(ctx, "patient@example.com", "Ayesha", []byte("doc"), "report.pdf")
	}

	// Once the breaker opens, sends are rejected without hitting the relay.
	assert.Less(t, calls, 5)
}

func TestWhatsAppLink(t *testing.T) {
	t.Run("with message", func(t *testing.T) {
		link := WhatsAppLink("+971 50 123 4567", "Hello, I would like to book a follow-up")
		assert.Equal(t, "https://wa.me/971501234567?text=Hello%2C+I+would+like+to+book+a+follow-up", link)
	})

	t.Run("without message", func(t *testing.T) {
		assert.Equal(t, "https://wa.me/971501234567", WhatsAppLink("971501234567", ""))
	})

	t.Run("empty phone", func(t *testing.T) {
		assert.Empty(t, WhatsAppLink("", "hi"))
	})
}
