package services

import (
	"context"
	"errors"
	"sync"
)

// SentMail is one message captured by MockMailer
type SentMail struct {
	To      string
	Subject string
	HTML    string
}

// MockMailer records messages instead of delivering them
type MockMailer struct {
	mu   sync.Mutex
	sent []SentMail

	// Fail makes every Send return an error after recording the message
	Fail bool
}

// NewMockMailer creates an empty mock mailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records the message
func (m *MockMailer) Send(ctx context.Context, toEmail, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, SentMail{To: toEmail, Subject: subject, HTML: html})
	if m.Fail {
		return errors.New("mock mailer failure")
	}
	return nil
}

// Sent returns the messages recorded so far
func (m *MockMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}
