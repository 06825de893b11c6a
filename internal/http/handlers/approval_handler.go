package handlers

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"vendorhub/internal/domain"
	applog "vendorhub/internal/log"
	"vendorhub/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

const sseHeartbeat = 15 * time.Second

type ApprovalHandler struct {
	Users    services.UserSource
	Resolver *services.SessionResolver
	Watcher  *services.ApprovalWatcher
}

// Page is the waiting room. The session is already resolved by RequireSession.
func (h *ApprovalHandler) Page(c *fiber.Ctx) error {
	sess := sessionFrom(c)
	u, err := h.Users.ByID(c.UserContext(), sess.UserID)
	if err != nil {
		applog.Error(c, "approval.profile.fail", err, nil)
		return redirectWithNotice(c, "/login", NoticeError, "We could not load your account. Please sign in again.")
	}
	c.Locals("user", u)
	return render(c, "waiting_approval", fiber.Map{
		"Status":      string(u.Approved),
		"Accepted":    u.Approved == domain.ApprovalAccepted,
		"Rejected":    u.Approved == domain.ApprovalRejected,
		"IsVendor":    u.Role == domain.RoleVendor,
		"PollSeconds": int(h.Watcher.Interval / time.Second),
	})
}

type sseEvent struct {
	name string
	data string
}

// Events streams approval changes as server-sent events until the account is
// accepted, the session goes away or the client disconnects.
func (h *ApprovalHandler) Events(c *fiber.Ctx) error {
	sess := sessionFrom(c)
	sid, uid := sess.ID, sess.UserID
	policy := services.SessionPolicy{RequireAuth: true}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events := make(chan sseEvent, 8)
		push := func(ev sseEvent) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		unsubscribe := h.Resolver.Watch(ctx, sid, policy, func(r services.Resolution) {
			if r.Redirect != "" {
				go push(sseEvent{name: "redirect", data: r.Redirect})
			}
		})
		defer unsubscribe()

		go func() {
			err := h.Watcher.Watch(ctx, uid, func(a domain.Approval) {
				push(sseEvent{name: "status", data: string(a)})
			})
			if err == nil {
				push(sseEvent{name: "redirect", data: "/dashboard"})
			}
		}()

		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()
		for {
			select {
			case ev := <-events:
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, ev.data)
				if err := w.Flush(); err != nil {
					return
				}
				if ev.name == "redirect" {
					applog.Info(nil, "approval.stream.redirect", map[string]any{"user_id": uid, "to": ev.data})
					return
				}
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}
