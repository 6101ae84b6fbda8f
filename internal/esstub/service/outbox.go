package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Channel is how a code reaches the member.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelVoice Channel = "voice"
	ChannelEmail Channel = "email"
)

// Delivery is one dispatched code.
type Delivery struct {
	Username    string
	Channel     Channel
	Destination string
	Code        string
	SentAt      time.Time
}

// Outbox stands in for the SMS, voice and email gateways. It keeps the
// latest delivery per username so developers and tests can read codes back.
type Outbox struct {
	logger   *slog.Logger
	logCodes bool

	mu     sync.Mutex
	last   map[string]Delivery
	counts map[string]int
}

// NewOutbox creates an outbox. When logCodes is set every dispatched code
// is logged in the clear, which is only sensible for local development.
func NewOutbox(logger *slog.Logger, logCodes bool) *Outbox {
	return &Outbox{
		logger:   logger,
		logCodes: logCodes,
		last:     make(map[string]Delivery),
		counts:   make(map[string]int),
	}
}

func (o *Outbox) Send(ctx context.Context, d Delivery) {
	key := strings.ToLower(d.Username)

	o.mu.Lock()
	o.last[key] = d
	o.counts[key]++
	o.mu.Unlock()

	attrs := []any{"username", d.Username, "channel", d.Channel}
	if o.logCodes {
		attrs = append(attrs, "destination", d.Destination, "code", d.Code)
	}
	o.logger.InfoContext(ctx, "code dispatched", attrs...)
}

// Last returns the most recent delivery for username.
func (o *Outbox) Last(username string) (Delivery, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	d, ok := o.last[strings.ToLower(username)]
	return d, ok
}

// Count returns how many codes were sent to username.
func (o *Outbox) Count(username string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[strings.ToLower(username)]
}
