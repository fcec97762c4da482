package common

// EmailSender is the outbound mail contract consumed by notifiers.
type EmailSender interface {
	Send(to, subject, body string) error
}

// Email is one captured outbound message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// InMemoryEmail records messages instead of delivering them, for tests.
type InMemoryEmail struct {
	Outbox []Email
}

// Send appends the message to the outbox.
func (m *InMemoryEmail) Send(to, subject, body string) error {
	if m == nil {
		return nil
	}
	m.Outbox = append(m.Outbox, Email{To: to, Subject: subject, Body: body})
	return nil
}
