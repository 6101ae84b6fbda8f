package service

import (
	"sync"
	"time"

	"github.com/aussiebroadwan/memberauth/pkg/cryptox"
	"github.com/aussiebroadwan/memberauth/pkg/idx"
)

// step is what an interaction is waiting for next.
type step int

const (
	stepNone step = iota
	stepDeviceSelection
	stepOTP
	stepEmailCode
	stepReactivationCode
	stepUniqueEmail     // waiting for a replacement address
	stepUniqueEmailCode // waiting for the code sent to the replacement
	stepPasswordReset
	stepDuplicateAccount
)

func (s step) acceptsEmailCode() bool {
	return s == stepEmailCode || s == stepReactivationCode || s == stepUniqueEmailCode
}

// interaction is the backend half of one login attempt.
type interaction struct {
	mu sync.Mutex

	id        string
	token     string
	userToken string
	username  string
	expiresAt time.Time // fixed at creation

	step     step
	deviceID string

	// Pending one-time code, shared by device and email challenges since
	// only one is outstanding at a time. Authenticator devices leave it empty.
	code         string
	codeExpires  time.Time
	codeAttempts int

	pendingEmail string
	mfaPassed    bool
}

// setCode arms a new pending code and resets the attempt counter.
func (in *interaction) setCode(code string, expires time.Time) {
	in.code = code
	in.codeExpires = expires
	in.codeAttempts = 0
}

func (in *interaction) clearCode() {
	in.code = ""
	in.codeExpires = time.Time{}
	in.codeAttempts = 0
}

// rotate issues a fresh interaction token.
func (in *interaction) rotate() {
	in.token = cryptox.MustGenerateToken(cryptox.TokenSize256)
}

// interactions is the in-memory registry of live interactions.
type interactions struct {
	mu   sync.Mutex
	byID map[string]*interaction
}

func newInteractions() *interactions {
	return &interactions{byID: make(map[string]*interaction)}
}

// create registers a new interaction for username.
func (r *interactions) create(username string, expiresAt time.Time) *interaction {
	in := &interaction{
		id:        idx.New().String(),
		token:     cryptox.MustGenerateToken(cryptox.TokenSize256),
		userToken: cryptox.MustGenerateToken(cryptox.TokenSize128),
		username:  username,
		expiresAt: expiresAt,
	}

	r.mu.Lock()
	r.byID[in.id] = in
	r.mu.Unlock()
	return in
}

// take returns the live interaction matching id and token, locked. The
// caller must unlock it.
func (r *interactions) take(id, token string, now time.Time) (*interaction, bool) {
	r.mu.Lock()
	in, ok := r.byID[id]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}

	in.mu.Lock()
	if !now.Before(in.expiresAt) || !cryptox.EqualTokens(in.token, token) {
		in.mu.Unlock()
		return nil, false
	}
	return in, true
}

func (r *interactions) remove(id string) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

func (r *interactions) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// sweep drops expired interactions and returns how many were removed.
func (r *interactions) sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int
	for id, in := range r.byID {
		if !now.Before(in.expiresAt) {
			delete(r.byID, id)
			removed++
		}
	}
	return removed
}
