package services

import (
	"context"

	"vendorhub/internal/domain"

	"github.com/pkg/errors"
)

const DefaultLoginPath = "/login"

// SessionPolicy is declared per route.
type SessionPolicy struct {
	RequireAuth bool
	RedirectTo  string // defaults to /login
}

func (p SessionPolicy) fallback() string {
	if p.RedirectTo == "" {
		return DefaultLoginPath
	}
	return p.RedirectTo
}

// Resolution is the outcome of applying a policy to a (possibly absent) session.
// Redirect is set when the caller must navigate away instead of rendering.
type Resolution struct {
	Session  *domain.Session
	Redirect string
}

// Apply is the single "redirect if required and absent" rule shared by the
// one-shot fetch and the change subscription.
func (p SessionPolicy) Apply(sess *domain.Session) Resolution {
	if sess == nil && p.RequireAuth {
		return Resolution{Redirect: p.fallback()}
	}
	return Resolution{Session: sess}
}

type SessionSource interface {
	CurrentSession(ctx context.Context, sid string) (*domain.Session, error)
}

type SessionResolver struct {
	Sessions SessionSource
	Hub      *SessionHub
	// OnError receives lookup failures Watch cannot return to its caller.
	OnError func(error)
}

// Resolve fetches the session once. Lookup failures other than "no session"
// are returned together with a fail-closed resolution.
func (r *SessionResolver) Resolve(ctx context.Context, sid string, p SessionPolicy) (Resolution, error) {
	sess, err := r.Sessions.CurrentSession(ctx, sid)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return p.Apply(nil), nil
		}
		return p.Apply(nil), err
	}
	return p.Apply(sess), nil
}

// Watch subscribes to session changes for sid before the initial fetch, so a
// change landing between the two is still delivered. fn sees the initial
// resolution and every later one. The returned func unsubscribes.
func (r *SessionResolver) Watch(ctx context.Context, sid string, p SessionPolicy, fn func(Resolution)) (unsubscribe func()) {
	unsubscribe = func() {}
	if r.Hub != nil {
		unsubscribe = r.Hub.Subscribe(func(ev SessionEvent) {
			if ev.SID != sid {
				return
			}
			if ev.Kind == SignedOut {
				fn(p.Apply(nil))
				return
			}
			fn(p.Apply(ev.Session))
		})
	}
	res, err := r.Resolve(ctx, sid, p)
	if err != nil && r.OnError != nil {
		r.OnError(err)
	}
	fn(res)
	return unsubscribe
}
