package stores

import (
	"context"
	"net/http"

	"github.com/MrEthical07/backoffice/api"
)

// Freelancers registers freelancers. Registration is reachable from a public
// page, so the bearer credential is sent only when one exists.
type Freelancers struct {
	base
	categories []Named
}

func NewFreelancers(deps Deps) *Freelancers {
	s := &Freelancers{}
	s.init("freelancers", deps)
	return s
}

func (s *Freelancers) Add(ctx context.Context, req FreelancerRequest) (Freelancer, error) {
	var out Freelancer
	err := s.run("freelancers.add", func() error {
		data, err := fetch[Freelancer](ctx, &s.base, api.Request{Method: http.MethodPost, Path: "/freelancer/add", Body: req})
		s.report(ctx, "freelancers.add", err, "Freelancer added", "Failed to add freelancer")
		out = data
		return err
	})
	return out, err
}

func (s *Freelancers) WorkExperienceCategories(ctx context.Context) ([]Named, error) {
	var out []Named
	err := s.run("freelancers.work_experience_categories", func() error {
		data, err := fetch[[]Named](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/work-experience/category/all"})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.categories = data
		s.mu.Unlock()
		out = append([]Named(nil), data...)
		return nil
	})
	return out, err
}

func (s *Freelancers) CachedWorkExperienceCategories() []Named {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Named(nil), s.categories...)
}
