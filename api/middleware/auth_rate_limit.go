package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mateovidal/catalogbase-backend/api/responses"
	"github.com/mateovidal/catalogbase-backend/pkg/config"
	pkgerrors "github.com/mateovidal/catalogbase-backend/pkg/errors"
	"github.com/mateovidal/catalogbase-backend/pkg/logger"
	"github.com/mateovidal/catalogbase-backend/pkg/metrics"
)

// SlidingWindowStore is the counter surface backed by Redis.
type SlidingWindowStore interface {
	SlidingWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// IdentityFunc extracts the throttling identity from a request. Returning ""
// skips the check for that request.
type IdentityFunc func(r *http.Request) string

// IdentityIP keys the window on the calling address, suited to signup.
func IdentityIP(r *http.Request) string {
	return clientIP(r)
}

// identityBodyLimit caps how much of an unauthenticated body the limiter
// buffers while extracting the email.
const identityBodyLimit = 1 << 20

// IdentityEmail keys the window on a hash of the submitted email, suited to
// login. The body is restored for the downstream handler; anything past the
// cap is discarded, which leaves oversized payloads unparseable and unkeyed.
func IdentityEmail(r *http.Request) string {
	body, err := io.ReadAll(io.LimitReader(r.Body, identityBodyLimit))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}

// AuthRateLimit throttles an auth action with a sliding window keyed by
// "<action>_<identity>". When Redis is unconfigured the gate is absent; when
// the store errors the gate fails open (configurable) because login
// availability outranks strict enforcement.
func AuthRateLimit(
	action string,
	limit int,
	cfg config.AuthRateLimitConfig,
	store SlidingWindowStore,
	identity IdentityFunc,
	m *metrics.AuthMetrics,
	logg *logger.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || limit <= 0 || cfg.Window <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id := identity(r)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			scope := action + "_" + id
			allowed, count, err := store.SlidingWindowAllow(ctx, scope, int64(limit), cfg.Window)
			if err != nil {
				if cfg.FailOpen {
					if logg != nil {
						logCtx := logg.WithFields(ctx, map[string]any{
							"action": action,
							"error":  err.Error(),
						})
						logg.Warn(logCtx, "rate limiter unavailable, failing open")
					}
					next.ServeHTTP(w, r)
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}

			if !allowed {
				m.IncRateLimited(action)
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"action":         action,
						"attempts":       count,
						"limit":          limit,
						"window_seconds": int(cfg.Window.Seconds()),
					})
					logg.Warn(logCtx, "auth.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
