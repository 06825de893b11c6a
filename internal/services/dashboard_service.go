package services

import (
	"context"

	"vendorhub/internal/repos"

	"github.com/pkg/errors"
)

const recentActivityLimit = 5

type DashboardView struct {
	Stats  repos.VendorStats
	Recent []repos.CartActivity
}

// DashboardService summarizes a vendor's catalog and shopper engagement.
type DashboardService struct {
	Engagement *repos.EngagementRepo
}

func (s *DashboardService) Overview(ctx context.Context, owner string) (DashboardView, error) {
	st, err := s.Engagement.VendorStats(ctx, owner)
	if err != nil {
		return DashboardView{}, errors.Wrap(err, "vendor stats")
	}
	recent, err := s.Engagement.RecentCartActivity(ctx, owner, recentActivityLimit)
	if err != nil {
		return DashboardView{}, errors.Wrap(err, "recent cart activity")
	}
	return DashboardView{Stats: st, Recent: recent}, nil
}
