package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "registrar/pkg/domain"
	"registrar/pkg/requestcontext"
)

// Claims is the token payload: the account and whether it may use the staff
// surface.
type Claims struct {
	Staff bool `json:"staff"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies the bearer tokens the HTTP surface runs
// on. HMAC with a single shared key; key rotation is an operational concern.
type Authenticator struct {
	key []byte
	ttl time.Duration
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{key: []byte(signingKey), ttl: 12 * time.Hour}
}

// IssueToken mints a signed token for an account.
func (a *Authenticator) IssueToken(userID id.UserID, staff bool, now time.Time) (string, error) {
	claims := Claims{
		Staff: staff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.key)
}

// Verify parses and validates a token string.
func (a *Authenticator) Verify(tokenString string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return &claims, nil
}

// RequireAuth validates the bearer token and stamps the account and staff
// flag into the request context.
func RequireAuth(auth *Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}
			claims, err := auth.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access",
					"error", err,
					"request_id", requestcontext.RequestID(ctx))
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			userID, err := id.ParseUserID(claims.Subject)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			ctx = requestcontext.WithUserID(ctx, userID)
			ctx = requestcontext.WithStaff(ctx, claims.Staff)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff refuses accounts without the staff claim. Must run inside
// RequireAuth.
func RequireStaff(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !requestcontext.IsStaff(ctx) {
				logger.WarnContext(ctx, "staff route refused",
					"user_id", requestcontext.UserID(ctx).String(),
					"request_id", requestcontext.RequestID(ctx))
				writeJSONError(w, http.StatusForbidden, "forbidden", "Staff access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"error_description":%q}`, errCode, errDesc))
}
