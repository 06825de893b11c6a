package services

import (
	"context"

	"vendorhub/internal/domain"
)

const (
	PathLogin           = "/login"
	PathWaitingApproval = "/waiting-approval"
	PathNotAuthorized   = "/not-authorized"
)

type UserSource interface {
	ByID(ctx context.Context, id string) (*domain.User, error)
}

// Decision is the gate outcome: either Allow with the loaded User, or a
// Redirect target with the Reason used for logging.
type Decision struct {
	Allow    bool
	Redirect string
	Reason   string
	User     *domain.User
}

// Gate decides dashboard access from role and approval state. It runs after
// the session has been resolved and never fails open.
type Gate struct {
	Users UserSource
}

func (g *Gate) Decide(ctx context.Context, sess *domain.Session) Decision {
	if sess == nil || sess.UserID == "" {
		return Decision{Redirect: PathLogin, Reason: "no_session"}
	}
	u, err := g.Users.ByID(ctx, sess.UserID)
	if err != nil || u == nil {
		return Decision{Redirect: PathLogin, Reason: "profile_unavailable"}
	}
	if u.Approved != domain.ApprovalAccepted {
		return Decision{Redirect: PathWaitingApproval, Reason: "not_approved", User: u}
	}
	if u.Role != domain.RoleVendor {
		return Decision{Redirect: PathNotAuthorized, Reason: "wrong_role", User: u}
	}
	return Decision{Allow: true, User: u}
}
