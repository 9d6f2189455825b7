package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/evrs-lk/evrs-api/internal/domain/entity"
	"github.com/evrs-lk/evrs-api/pkg/mailer"
)

// Dispatcher delivers a verification code to the channel that must prove
// itself. It is invoked exactly once per change request; failure is surfaced
// to the caller, never retried here.
type Dispatcher interface {
	SendCode(ctx context.Context, ch entity.Channel, target, code string, ttl time.Duration) error
}

// Sender dispatches email codes through Mailgun and phone codes through
// Twilio WhatsApp.
type Sender struct {
	Mail *mailer.Mailgun
	SMS  *Twilio
}

func NewSender(mail *mailer.Mailgun, sms *Twilio) *Sender {
	return &Sender{Mail: mail, SMS: sms}
}

func (s *Sender) SendCode(ctx context.Context, ch entity.Channel, target, code string, ttl time.Duration) error {
	mins := int(ttl.Minutes())
	switch ch {
	case entity.ChannelPhone:
		body := fmt.Sprintf("Your EVRS verification code is %s. It expires in %d minutes.", code, mins)
		return s.SMS.SendWhatsApp(target, body)
	default:
		subject := "Your EVRS Email Verification Code"
		text := fmt.Sprintf("Your verification code is: %s\n\nThis code will expire in %d minutes.", code, mins)
		html := fmt.Sprintf("<p>Your verification code is: <strong>%s</strong></p><p>This code will expire in %d minutes.</p>", code, mins)
		return s.Mail.Send(ctx, target, subject, text, html)
	}
}

var _ Dispatcher = (*Sender)(nil)
