package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"blog-service/internal/shared/jwt"

	"github.com/sirupsen/logrus"
)

type HandlerFunc func(http.ResponseWriter, *http.Request) error

// Wrap turns a HandlerFunc into an http.Handler. *Error values become an
// ErrorPayload with their status; anything else is a 500 with a generic message.
func Wrap(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		var he *Error
		if errors.As(err, &he) {
			WriteError(w, he.Status, he.Message)
			return
		}
		LoggerFromCtx(r).WithError(err).Error("unhandled handler error")
		WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	})
}

// ErrorPayload is the body of every structured error response.
type ErrorPayload struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusName renders a status code the way clients expect it in ErrorPayload.Error,
// e.g. 406 -> NOT_ACCEPTABLE.
func StatusName(code int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_"))
}

func WriteJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, ErrorPayload{Status: code, Error: StatusName(code), Message: msg}, code)
}

func WriteText(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

func Decode[T any](r *http.Request) (T, error) {
	var t T
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		return t, BadRequest("Malformed request body: " + err.Error())
	}
	return t, nil
}

// PathInt64 parses a numeric path segment registered as {name}.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, BadRequest(fmt.Sprintf("Invalid post id: %s", raw))
	}
	return n, nil
}

type ctxKey string

const (
	userKey   ctxKey = "user"
	loggerKey ctxKey = "logger"
)

func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// AuthMiddleware rejects requests without a valid access token and stores the
// token subject in the request context.
func AuthMiddleware(tokens *jwt.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := BearerToken(r)
			if tok == "" {
				LoggerFromCtx(r).Warn("missing bearer token")
				WriteError(w, http.StatusUnauthorized, "Missing bearer token")
				return
			}
			sub, err := tokens.ParseAccess(tok)
			if err != nil {
				LoggerFromCtx(r).WithError(err).Warn("rejected bearer token")
				WriteError(w, http.StatusUnauthorized, "Invalid bearer token")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserFromCtx(r *http.Request) (string, error) {
	uid, _ := r.Context().Value(userKey).(string)
	if uid == "" {
		return "", Unauthorized("Authentication required")
	}
	return uid, nil
}

// StatusRecorder remembers the status written by the wrapped handler.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
}

func (s *StatusRecorder) WriteHeader(code int) {
	s.Status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger attaches a request-scoped entry to the context and logs every
// completed request.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path})
			rec := NewStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), loggerKey, entry)))
			entry.WithFields(logrus.Fields{
				"status":   rec.Status,
				"duration": time.Since(start).String(),
			}).Info("request")
		})
	}
}

func LoggerFromCtx(r *http.Request) logrus.FieldLogger {
	if l, ok := r.Context().Value(loggerKey).(logrus.FieldLogger); ok {
		return l
	}
	return logrus.StandardLogger()
}

// Chain applies middlewares so that the first one is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
