package mailer

import (
	"sync"

	"github.com/Daskott/glucowatch/shared"
	"gopkg.in/gomail.v2"
)

// Message is a recorded outbound email - only kept around in test mode.
type Message struct {
	To      string
	Subject string
	Body    string
}

type ClientWrapper struct {
	dialer   *gomail.Dialer
	config   shared.SmtpConfig
	testMode bool

	mu   sync.Mutex
	sent []Message
}

func NewClient(config shared.SmtpConfig, testMode bool) *ClientWrapper {
	return &ClientWrapper{
		dialer:   gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		config:   config,
		testMode: testMode,
	}
}

// SendEmail delivers a single html email through the configured relay.
// In test mode the message is recorded instead of sent.
func (cw *ClientWrapper) SendEmail(to, subject, htmlBody string) error {
	if cw.testMode {
		cw.mu.Lock()
		defer cw.mu.Unlock()
		cw.sent = append(cw.sent, Message{To: to, Subject: subject, Body: htmlBody})
		return nil
	}

	message := gomail.NewMessage()
	message.SetHeader("From", cw.config.From)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", htmlBody)

	return cw.dialer.DialAndSend(message)
}

// SentMessages returns the messages recorded in test mode.
func (cw *ClientWrapper) SentMessages() []Message {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	messages := make([]Message, len(cw.sent))
	copy(messages, cw.sent)

	return messages
}
