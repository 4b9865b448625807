// Package memstore keeps accounts and resumes in process memory for
// dev/testing. Each method holds the lock for its whole body, so every call is
// atomic the same way a single SQL statement is.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"resumehub/internal/model"
	"resumehub/internal/store"
)

// Accounts is an in-memory credential store.
type Accounts struct {
	mu   sync.RWMutex
	byID map[string]model.Account
}

// NewAccounts creates an empty account store.
func NewAccounts() *Accounts {
	return &Accounts{byID: make(map[string]model.Account)}
}

func (s *Accounts) Create(_ context.Context, a *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(a.Email, "") {
		return store.ErrDuplicate
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	s.byID[a.ID] = *a
	return nil
}

func (s *Accounts) GetByID(_ context.Context, id string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Accounts) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.byID {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Accounts) Update(_ context.Context, id string, u model.AccountUpdate) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	if u.Email != nil && s.emailTaken(*u.Email, id) {
		return nil, store.ErrDuplicate
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&a.Name, u.Name)
	set(&a.Email, u.Email)
	set(&a.Phone, u.Phone)
	set(&a.College, u.College)
	set(&a.Company, u.Company)
	set(&a.Address, u.Address)
	set(&a.State, u.State)
	set(&a.District, u.District)
	a.UpdatedAt = time.Now().UTC()
	s.byID[id] = a
	return &a, nil
}

func (s *Accounts) UpdatePassword(_ context.Context, id, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	a.PasswordHash = hash
	a.UpdatedAt = time.Now().UTC()
	s.byID[id] = a
	return true, nil
}

func (s *Accounts) ListByRole(_ context.Context, role model.Role) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.Account
	for _, a := range s.byID {
		if a.Role == role {
			res = append(res, a)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Name != res[j].Name {
			return res[i].Name < res[j].Name
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (s *Accounts) CountByRole(_ context.Context, role model.Role) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, a := range s.byID {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *Accounts) emailTaken(email, exceptID string) bool {
	for id, a := range s.byID {
		if id != exceptID && a.Email == email {
			return true
		}
	}
	return false
}

// Resumes is an in-memory resume store.
type Resumes struct {
	mu   sync.RWMutex
	byID map[string]*model.Resume
}

// NewResumes creates an empty resume store.
func NewResumes() *Resumes {
	return &Resumes{byID: make(map[string]*model.Resume)}
}

func (s *Resumes) Insert(_ context.Context, r *model.Resume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, ok := s.byID[r.ID]; ok {
		return store.ErrDuplicate
	}
	now := time.Now().UTC()
	if r.UploadedAt.IsZero() {
		r.UploadedAt = now
	}
	r.CreatedAt, r.UpdatedAt = now, now
	if r.ViewedBy == nil {
		r.ViewedBy = []string{}
	}
	if r.SelectedBy == nil {
		r.SelectedBy = []model.Selection{}
	}
	cp := clone(*r)
	s.byID[r.ID] = &cp
	return nil
}

func (s *Resumes) Get(_ context.Context, id string) (*model.Resume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := clone(*r)
	return &cp, nil
}

func (s *Resumes) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false, nil
	}
	delete(s.byID, id)
	return true, nil
}

func (s *Resumes) Search(_ context.Context, query, collegeID string) ([]model.Resume, error) {
	q := strings.ToLower(query)
	return s.filter(func(r *model.Resume) bool {
		if collegeID != "" && (r.CollegeID == nil || *r.CollegeID != collegeID) {
			return false
		}
		return strings.Contains(strings.ToLower(r.Content), q)
	}), nil
}

func (s *Resumes) ListByCollege(_ context.Context, collegeID string) ([]model.Resume, error) {
	return s.filter(func(r *model.Resume) bool {
		return r.CollegeID != nil && *r.CollegeID == collegeID
	}), nil
}

func (s *Resumes) CountByCollege(ctx context.Context, collegeID string) (int64, error) {
	res, _ := s.ListByCollege(ctx, collegeID)
	return int64(len(res)), nil
}

func (s *Resumes) CountByUploader(_ context.Context, kind model.UploaderKind) (int64, error) {
	return int64(len(s.filter(func(r *model.Resume) bool { return r.UploadedBy == kind }))), nil
}

func (s *Resumes) CountAll(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func (s *Resumes) ListAll(_ context.Context) ([]model.Resume, error) {
	return s.filter(func(*model.Resume) bool { return true }), nil
}

func (s *Resumes) ListSelectedBy(_ context.Context, hrID string) ([]model.Resume, error) {
	return s.filter(func(r *model.Resume) bool { return r.IsSelectedBy(hrID) }), nil
}

// UpsertSelection reports false when the resume does not exist.
func (s *Resumes) UpsertSelection(_ context.Context, resumeID, hrID string, selected bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[resumeID]
	if !ok {
		return false, nil
	}
	r.UpdatedAt = time.Now().UTC()
	for i := range r.SelectedBy {
		if r.SelectedBy[i].HRID == hrID {
			r.SelectedBy[i].Selected = selected
			return true, nil
		}
	}
	r.SelectedBy = append(r.SelectedBy, model.Selection{HRID: hrID, Selected: selected})
	return true, nil
}

// AddViewer reports false when the resume does not exist.
func (s *Resumes) AddViewer(_ context.Context, resumeID, viewerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[resumeID]
	if !ok {
		return false, nil
	}
	r.Viewed = true
	r.UpdatedAt = time.Now().UTC()
	for _, v := range r.ViewedBy {
		if v == viewerID {
			return true, nil
		}
	}
	r.ViewedBy = append(r.ViewedBy, viewerID)
	return true, nil
}

// filter returns matching copies, newest first.
func (s *Resumes) filter(keep func(*model.Resume) bool) []model.Resume {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := []model.Resume{}
	for _, r := range s.byID {
		if keep(r) {
			res = append(res, clone(*r))
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res
}

func clone(r model.Resume) model.Resume {
	r.ViewedBy = append([]string{}, r.ViewedBy...)
	r.SelectedBy = append([]model.Selection{}, r.SelectedBy...)
	return r
}
