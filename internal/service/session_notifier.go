package service

import (
	"sync"
	"time"

	"tb-intake/internal/domain/entity"
)

// SessionNotifier queues notifications on a wizard session for its client to display.
type SessionNotifier struct {
	mu      sync.Mutex
	session *entity.WizardSession
}

func NewSessionNotifier(session *entity.WizardSession) *SessionNotifier {
	return &SessionNotifier{session: session}
}

func (n *SessionNotifier) Notify(severity entity.Severity, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.session.Notify(severity, message)
}

// SessionNavigator records the redirect the client should follow after delay.
type SessionNavigator struct {
	mu      sync.Mutex
	session *entity.WizardSession
	delay   time.Duration
}

func NewSessionNavigator(session *entity.WizardSession, delay time.Duration) *SessionNavigator {
	return &SessionNavigator{session: session, delay: delay}
}

func (n *SessionNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.session.Redirect = &entity.Redirect{Target: target, Delay: n.delay}
}
