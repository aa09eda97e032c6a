package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/ramitaha13/KamelStore/internal/platform/requestctx"
)

type contextKey string

const sessionContextKey contextKey = "kamelstore/session"

// Store abstracts the session manager for middleware integration.
type Store interface {
	Load(*http.Request) (*Session, error)
	New() *Session
	Renew(*Session) *Session
	Save(http.ResponseWriter, *Session) error
}

// Middleware attaches the decoded session to the request context and writes the cookie back just
// before the response headers go out, so handlers must finish mutating the session before writing.
func Middleware(store Store) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := requestctx.Logger(r.Context())

			sess, err := store.Load(r)
			switch {
			case errors.Is(err, ErrExpired):
				logger.Debug("session expired; renewing")
				sess = store.Renew(sess)
			case err != nil || sess == nil:
				if err != nil {
					logger.Warn("session load failed", zap.Error(err))
				}
				sess = store.New()
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			actor := requestctx.Actor{SessionID: sess.ID()}
			if admin := sess.Admin(); admin != nil {
				actor.Admin = admin.Username
			}
			ctx = requestctx.WithActor(ctx, actor)

			sw := &saveOnWrite{ResponseWriter: w, save: func() {
				if err := store.Save(w, sess); err != nil {
					logger.Error("session save failed", zap.Error(err))
				}
			}}
			next.ServeHTTP(sw, r.WithContext(ctx))
			sw.commit()
		})
	}
}

// FromContext retrieves the session attached to this request.
func FromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(sessionContextKey).(*Session)
	return sess, ok && sess != nil
}

// WithSession attaches sess to ctx. Intended for handlers exercised without the middleware.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

type saveOnWrite struct {
	http.ResponseWriter
	once sync.Once
	save func()
}

func (w *saveOnWrite) commit() {
	w.once.Do(w.save)
}

func (w *saveOnWrite) WriteHeader(status int) {
	w.commit()
	w.ResponseWriter.WriteHeader(status)
}

func (w *saveOnWrite) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *saveOnWrite) Flush() {
	w.commit()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *saveOnWrite) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
