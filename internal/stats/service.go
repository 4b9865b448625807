package stats

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"resumehub/internal/apperr"
	"resumehub/internal/model"
)

type AccountCounter interface {
	CountByRole(ctx context.Context, role model.Role) (int64, error)
}

type ResumeCounter interface {
	CountByUploader(ctx context.Context, kind model.UploaderKind) (int64, error)
}

// Service computes the admin dashboard counters.
type Service struct {
	accounts AccountCounter
	resumes  ResumeCounter
}

func NewService(accounts AccountCounter, resumes ResumeCounter) *Service {
	return &Service{accounts: accounts, resumes: resumes}
}

// GetStats runs the four counts concurrently. Nothing is cached.
func (s *Service) GetStats(ctx context.Context) (model.Stats, error) {
	var st model.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.AdminResumeCount, err = s.resumes.CountByUploader(gctx, model.UploaderAdmin)
		return err
	})
	g.Go(func() (err error) {
		st.CollegeResumeCount, err = s.resumes.CountByUploader(gctx, model.UploaderCollege)
		return err
	})
	g.Go(func() (err error) {
		st.HRCount, err = s.accounts.CountByRole(gctx, model.RoleHR)
		return err
	})
	g.Go(func() (err error) {
		st.CollegeCount, err = s.accounts.CountByRole(gctx, model.RoleCollege)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Stats{}, apperr.Internal("Server error", fmt.Errorf("compute stats: %w", err))
	}
	return st, nil
}
