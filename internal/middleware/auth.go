package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type authCtxKey int

const resultKey authCtxKey = 7

// ResultClaims gate access to one respondent's result.
type ResultClaims struct {
	AssessmentID string `json:"aid"`
	Email        string `json:"email"`
	jwt.RegisteredClaims
}

// Auth signs and verifies respondent result tokens and guards admin routes.
// The admin key is held only as a bcrypt hash.
type Auth struct {
	secret    []byte
	adminHash []byte
}

func NewAuth(jwtSecret, adminKey string) (*Auth, error) {
	if jwtSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	a := &Auth{secret: []byte(jwtSecret)}
	if adminKey != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		a.adminHash = hash
	}
	return a, nil
}

// SignResultToken issues the token returned when an assessment is created;
// it is the only credential needed to read that assessment's result later.
func (a *Auth) SignResultToken(assessmentID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ResultClaims{
		AssessmentID: assessmentID,
		Email:        email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Auth) parseResultToken(tok string) (*ResultClaims, error) {
	t, err := jwt.ParseWithClaims(tok, &ResultClaims{}, func(*jwt.Token) (interface{}, error) { return a.secret, nil })
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*ResultClaims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// WithResultAuth attaches result claims to the context when a valid bearer
// token is present. Handlers decide whether claims are required.
func (a *Auth) WithResultAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := bearerToken(r); tok != "" {
			if c, err := a.parseResultToken(tok); err == nil {
				ctx := context.WithValue(r.Context(), resultKey, c)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func ResultClaimsFromContext(ctx context.Context) (*ResultClaims, bool) {
	c, ok := ctx.Value(resultKey).(*ResultClaims)
	return c, ok
}

// RequireAdmin guards an endpoint behind the configured admin key, presented
// as a bearer credential and checked against the stored bcrypt hash.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(a.adminHash) == 0 {
			http.Error(w, "admin access is not configured", http.StatusForbidden)
			return
		}
		key := bearerToken(r)
		if key == "" || bcrypt.CompareHashAndPassword(a.adminHash, []byte(key)) != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
