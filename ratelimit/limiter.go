package ratelimit

import (
	"strings"
	"sync"
	"time"
)

const (
	ipLimit  = 100
	ipWindow = 10 * time.Minute

	emailLimit  = 30
	emailWindow = 24 * time.Hour

	senderLimit  = 100
	senderWindow = 10 * time.Minute

	receiverLimit  = 100
	receiverWindow = 10 * time.Minute

	maxIdle       = 24 * time.Hour
	pruneInterval = 10 * time.Minute
)

// Limiter is the composite IP/email/sender/receiver rate limiter shared by
// every signature-gated HTTP handler. The zero value is not usable; build
// one with NewLimiter.
type Limiter struct {
	mu sync.Mutex

	byIP       map[string]*SlidingWindow
	byEmail    map[string]*SlidingWindow
	bySender   map[string]*SlidingWindow
	byReceiver map[string]*SlidingWindow

	lastPrune time.Time
}

// NewLimiter constructs an empty composite limiter.
func NewLimiter() *Limiter {
	return &Limiter{
		byIP:       make(map[string]*SlidingWindow),
		byEmail:    make(map[string]*SlidingWindow),
		bySender:   make(map[string]*SlidingWindow),
		byReceiver: make(map[string]*SlidingWindow),
		lastPrune:  time.Now(),
	}
}

// Check evaluates every provided dimension and reports whether all of them
// allow the hit. email, sender, and receiver are optional; a nil pointer
// skips that dimension entirely. Every provided dimension is evaluated,
// even once one has already denied, so a later dimension still records
// its hit.
func (l *Limiter) Check(ip string, email, sender, receiver *string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.pruneIfNeeded(now)

	ipOK := windowFor(l.byIP, ip, ipLimit, ipWindow).Allow(now)

	emailOK := true
	if email != nil {
		key := strings.ToLower(*email)
		emailOK = windowFor(l.byEmail, key, emailLimit, emailWindow).Allow(now)
	}

	senderOK := true
	if sender != nil {
		senderOK = windowFor(l.bySender, *sender, senderLimit, senderWindow).Allow(now)
	}

	receiverOK := true
	if receiver != nil {
		receiverOK = windowFor(l.byReceiver, *receiver, receiverLimit, receiverWindow).Allow(now)
	}

	return ipOK && emailOK && senderOK && receiverOK
}

func windowFor(m map[string]*SlidingWindow, key string, limit int, window time.Duration) *SlidingWindow {
	w, ok := m[key]
	if !ok {
		w = NewSlidingWindow(limit, window)
		m[key] = w
	}
	return w
}

func (l *Limiter) pruneIfNeeded(now time.Time) {
	if now.Sub(l.lastPrune) < pruneInterval {
		return
	}
	l.lastPrune = now

	cutoff := now.Add(-maxIdle)
	prune(l.byIP, cutoff)
	prune(l.byEmail, cutoff)
	prune(l.bySender, cutoff)
	prune(l.byReceiver, cutoff)
}

func prune(m map[string]*SlidingWindow, cutoff time.Time) {
	for key, w := range m {
		if w.idleSince(cutoff) {
			delete(m, key)
		}
	}
}
