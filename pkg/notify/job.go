package notify

// Job is the JSON payload put on the RabbitMQ notifications queue. The worker
// picks the transport from Channel: "email" targets are addresses, "phone"
// targets are E.164 numbers delivered over WhatsApp.
type Job struct {
	Channel string `json:"channel"`
	Target  string `json:"target"`
	Subject string `json:"subject,omitempty"` // email only
	Body    string `json:"body"`
}
