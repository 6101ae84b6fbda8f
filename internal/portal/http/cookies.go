package http

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/memberauth/pkg/idx"
)

const (
	FlowCookieName    = "member_flow"
	SessionCookieName = "member_session"

	flowCookiePath = "/v1/login"
)

// CookieConfig controls the attributes of cookies the portal sets.
type CookieConfig struct {
	Secure  bool
	FlowTTL time.Duration
}

func (c CookieConfig) setFlow(w http.ResponseWriter, id idx.ID) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlowCookieName,
		Value:    id.String(),
		Path:     flowCookiePath,
		MaxAge:   int(c.FlowTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c CookieConfig) clearFlow(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlowCookieName,
		Path:     flowCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// setSession stores the ES session token. The cookie expires with the
// token when its exp claim can be read; the signature is the ES API's to
// check, not ours.
func (c CookieConfig) setSession(w http.ResponseWriter, token string) (subject string) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if claims.ExpiresAt != nil {
			cookie.Expires = claims.ExpiresAt.Time
		}
		subject = claims.Subject
	}

	http.SetCookie(w, cookie)
	return subject
}

func flowIDFromRequest(r *http.Request) (idx.ID, bool) {
	c, err := r.Cookie(FlowCookieName)
	if err != nil {
		return idx.Zero, false
	}
	id, err := idx.Parse(c.Value)
	if err != nil {
		return idx.Zero, false
	}
	return id, true
}
