package service

import (
	"sync"
)

type sentMail struct {
	Kind string
	To   string
	Body string
}

// recordingMailer captures outgoing mail instead of sending it.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) record(kind, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: kind, To: to, Body: body})
	return m.err
}

func (m *recordingMailer) SendVerificationCode(to, code string) error {
	return m.record("verify", to, code)
}

func (m *recordingMailer) SendPaymentApproved(to, tierName string, days int) error {
	return m.record("approved", to, tierName)
}

func (m *recordingMailer) SendPaymentRejected(to, notes string) error {
	return m.record("rejected", to, notes)
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}
