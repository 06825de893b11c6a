package services

import (
	"context"
	"time"

	"vendorhub/internal/domain"
)

const DefaultApprovalPollInterval = 30 * time.Second

// ApprovalWatcher polls a user's approval state until it becomes Accepted or
// the context ends.
type ApprovalWatcher struct {
	Users    UserSource
	Interval time.Duration
	OnError  func(error)
}

// Watch checks immediately and then once per Interval, calling emit whenever
// the state differs from the last one seen. It returns nil once the user is
// Accepted and ctx.Err() on cancellation. Fetch errors are reported to
// OnError and polling continues.
func (w *ApprovalWatcher) Watch(ctx context.Context, userID string, emit func(domain.Approval)) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultApprovalPollInterval
	}
	var last domain.Approval
	check := func() bool {
		u, err := w.Users.ByID(ctx, userID)
		if err != nil {
			if w.OnError != nil && ctx.Err() == nil {
				w.OnError(err)
			}
			return false
		}
		if u.Approved != last {
			last = u.Approved
			emit(last)
		}
		return last == domain.ApprovalAccepted
	}

	if check() {
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if check() {
				return nil
			}
		}
	}
}
