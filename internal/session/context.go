package session

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

type contextKey string

const contextStateKey contextKey = "session"

type requestState struct {
	session *Session
	manager *Manager
}

func newContext(ctx context.Context, s *Session, m *Manager) context.Context {
	return context.WithValue(ctx, contextStateKey, &requestState{session: s, manager: m})
}

// FromContext returns the request's session. Outside Manager.Load it
// returns a detached anonymous session.
func FromContext(ctx context.Context) *Session {
	st, ok := ctx.Value(contextStateKey).(*requestState)
	if !ok {
		return &Session{}
	}
	return st.session
}

// Save writes the request's session cookie to w.
func Save(w http.ResponseWriter, r *http.Request) error {
	st, ok := r.Context().Value(contextStateKey).(*requestState)
	if !ok {
		return errors.New("session: request was not loaded by a Manager")
	}
	return st.manager.Save(w, st.session)
}
