package httpapi

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/session"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const sessionKey = "session"

// requestLogger logs each request and records it in the HTTP metrics
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req := c.Request()
		res := c.Response()
		elapsed := time.Since(start)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		if s.app.Metrics != nil {
			s.app.Metrics.ObserveRequest(req.Method, route, res.Status, elapsed)
		}

		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.Int("status", res.Status),
			zap.Duration("duration", elapsed),
			zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
		}
		if res.Status >= http.StatusInternalServerError {
			s.logger.Error("request failed", append(fields, zap.Error(err))...)
		} else {
			s.logger.Info("request", fields...)
		}
		return nil
	}
}

// authenticate resolves the bearer token to a ready session
func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c.Request())
		if token == "" {
			return session.ErrUnauthenticated
		}
		sess, err := s.app.Sessions.Authenticate(token)
		if err != nil {
			return err
		}
		c.Set(sessionKey, sess)
		return next(c)
	}
}

// requireManager rejects members whose role cannot manage the organization
func requireManager(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !currentSession(c).Role.CanManage() {
			return echo.NewHTTPError(http.StatusForbidden, "owner or admin role required")
		}
		return next(c)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func currentSession(c echo.Context) *session.Session {
	sess, _ := c.Get(sessionKey).(*session.Session)
	if sess == nil {
		return &session.Session{}
	}
	return sess
}

func orgID(c echo.Context) int {
	return currentSession(c).OrganizationID
}

func memberRole(c echo.Context) models.Role {
	return currentSession(c).Role
}

// loginLimiter keeps one token bucket per client IP
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLoginLimiter(perSecond float64, burst int) *loginLimiter {
	return &loginLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *loginLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// prune drops limiters that have refilled completely
func (l *loginLimiter) prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, limiter := range l.limiters {
		if limiter.Tokens() >= float64(l.burst) {
			delete(l.limiters, ip)
		}
	}
}

func (s *Server) throttleLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.limiter.get(c.RealIP()).Allow() {
			if s.app.Metrics != nil {
				s.app.Metrics.ObserveLogin("throttled")
			}
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many sign-in attempts")
		}
		return next(c)
	}
}
