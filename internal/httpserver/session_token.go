// internal/httpserver/session_token.go
//
// Session identity for browsers.
// Each visitor gets an anonymous session; its ID travels in an HS256 JWT
// (claim "sid") stored in an HttpOnly cookie, or in an
// "Authorization: Bearer" header for non-browser clients.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/internal/session"
)

// SessionTTL bounds how long a browser keeps its session cookie, and how long
// an untouched session stays in the store.
const SessionTTL = 24 * time.Hour

// tokenHeader echoes a freshly issued token for bearer clients.
const tokenHeader = "X-Session-Token"

// ctxSessionKey is the context key type for the request's session.
type ctxSessionKey struct{}

// sessionFrom returns the session attached by withSession.
func sessionFrom(r *http.Request) *session.Session {
	s, _ := r.Context().Value(ctxSessionKey{}).(*session.Session)
	return s
}

// withSession resolves the caller's session, creating one when the token is
// missing, invalid, or refers to a session this process no longer holds.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := bearerOrCookie(r, s.cfg.CookieName); tok != "" {
			if sid, err := s.parseToken(tok); err == nil {
				if sess, err := s.store.Get(r.Context(), sid); err == nil {
					sess.Touch()
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, sess)))
					return
				}
			}
		}

		sess := s.newSession(uuid.NewString())
		if err := s.store.Save(r.Context(), sess); err != nil {
			log.Error().Err(err).Msg("save session")
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		tok, exp, err := s.signToken(sess.ID)
		if err != nil {
			log.Error().Err(err).Msg("sign session token")
			writeError(w, http.StatusInternalServerError, "sign_failed")
			return
		}
		s.setSessionCookie(w, tok, exp)
		w.Header().Set(tokenHeader, tok)
		log.Debug().Str("session", sess.ID).Msg("session created")
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, sess)))
	})
}

// signToken creates an HS256 JWT carrying the session ID.
func (s *Server) signToken(sid string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.SessionSecret))
	return ss, exp, err
}

// parseToken verifies tok and returns its session ID.
func (s *Server) parseToken(tok string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SessionSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", errors.New("invalid token")
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", errors.New("invalid token")
	}
	return sid, nil
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := s.cfg.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or the session cookie.
func bearerOrCookie(r *http.Request, cookie string) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookie); err == nil {
		return c.Value
	}
	return ""
}
