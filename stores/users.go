package stores

import (
	"context"
	"net/http"
	"strconv"

	"github.com/MrEthical07/backoffice/api"
)

// Users reads and edits user profiles.
type Users struct {
	base
	profile Profile
}

func NewUsers(deps Deps) *Users {
	s := &Users{}
	s.init("users", deps)
	return s
}

type userID struct {
	ID int64 `json:"id"`
}

// Fetch loads a profile. The backend answers with a list; the first entry is
// kept. An empty list leaves the cached profile unchanged.
func (s *Users) Fetch(ctx context.Context, id int64) (Profile, error) {
	var out Profile
	err := s.run("users.fetch", func() error {
		data, err := fetch[[]Profile](ctx, &s.base, api.Request{Method: http.MethodPost, Path: "/user/get", Body: userID{ID: id}})
		if err != nil {
			return err
		}
		s.mu.Lock()
		if len(data) > 0 {
			s.profile = data[0]
		}
		out = s.profile
		s.mu.Unlock()
		return nil
	})
	return out, err
}

type profileUpdate struct {
	User    userID  `json:"userRequestDTO"`
	Profile Profile `json:"profileRequestDTO"`
}

// UpdateProfile saves p and caches it on success.
func (s *Users) UpdateProfile(ctx context.Context, p Profile) error {
	return s.run("users.update_profile", func() error {
		body := profileUpdate{User: userID{ID: p.ID}, Profile: p}
		err := s.call(ctx, api.Request{Method: http.MethodPut, Path: "/user/update-profile", Body: body}, nil)
		s.report(ctx, "users.update_profile", err, "Updated profile of user "+strconv.FormatInt(p.ID, 10), "Failed to update profile")
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.profile = p
		s.mu.Unlock()
		return nil
	})
}

func (s *Users) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}
