package notify

import (
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Twilio wraps the Twilio REST client for WhatsApp delivery.
type Twilio struct {
	client *twilio.RestClient
	from   string // WhatsApp-enabled sender number, E.164
}

func NewTwilio(accountSID, authToken, whatsAppFrom string) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Twilio{client: client, from: whatsAppFrom}
}

// SendWhatsApp delivers body to an E.164 number over WhatsApp.
func (t *Twilio) SendWhatsApp(to, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetFrom("whatsapp:" + t.from)
	params.SetTo("whatsapp:" + to)
	params.SetBody(body)
	_, err := t.client.Api.CreateMessage(params)
	return err
}
