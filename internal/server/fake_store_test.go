package server

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/db"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
)

// fakeStore is an in-memory DBClient following the db package conventions:
// misses are (nil, nil) and deletes of missing rows return db.ErrNotFound.
type fakeStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*db.User
	positions  map[uuid.UUID]*types.Position
	interviews map[uuid.UUID]*types.Interview

	pingErr      error
	listErr      error
	createUserFn func(email string) error
}

var _ DBClient = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[uuid.UUID]*db.User),
		positions:  make(map[uuid.UUID]*types.Position),
		interviews: make(map[uuid.UUID]*types.Interview),
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) CreateUser(_ context.Context, email, name, passwordHash string) (uuid.UUID, error) {
	if f.createUserFn != nil {
		if err := f.createUserFn(email); err != nil {
			return uuid.Nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return uuid.Nil, db.ErrDuplicateEmail
		}
	}
	now := time.Now().UTC()
	u := &db.User{ID: uuid.New(), Email: email, Name: name, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeStore) deleteUser(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

func (f *fakeStore) CreatePosition(_ context.Context, userID uuid.UUID, req *types.CreatePositionRequest) (*types.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := req.Status
	if status == "" {
		status = types.StatusApplied
	}
	now := time.Now().UTC()
	p := &types.Position{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           req.Title,
		Company:         req.Company,
		Description:     req.Description,
		Location:        req.Location,
		SalaryRange:     req.SalaryRange,
		Status:          status,
		ApplicationDate: *req.ApplicationDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.positions[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeStore) GetPosition(_ context.Context, userID, id uuid.UUID) (*types.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.positions[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) UpdatePosition(_ context.Context, userID uuid.UUID, p *types.Position) (*types.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.positions[p.ID]
	if !ok || existing.UserID != userID {
		return nil, nil
	}
	updated := *p
	updated.UserID = userID
	updated.Interviews = nil
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	f.positions[p.ID] = &updated
	cp := updated
	return &cp, nil
}

func (f *fakeStore) DeletePosition(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.positions[id]
	if !ok || p.UserID != userID {
		return db.ErrNotFound
	}
	delete(f.positions, id)
	for ivID, iv := range f.interviews {
		if iv.PositionID == id {
			delete(f.interviews, ivID)
		}
	}
	return nil
}

func matchesFilters(p *types.Position, filters *types.StatisticsFilters) bool {
	if filters == nil {
		return true
	}
	if filters.StartDate != nil && p.ApplicationDate.Before(filters.StartDate.Time) {
		return false
	}
	if filters.EndDate != nil && p.ApplicationDate.After(filters.EndDate.Time) {
		return false
	}
	if filters.Company != "" && !strings.Contains(strings.ToLower(p.Company), strings.ToLower(filters.Company)) {
		return false
	}
	if filters.Status != "" && p.Status != filters.Status {
		return false
	}
	return true
}

func (f *fakeStore) ListPositions(_ context.Context, userID uuid.UUID, filters *types.StatisticsFilters) ([]types.Position, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Position{}
	for _, p := range f.positions {
		if p.UserID == userID && matchesFilters(p, filters) {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ApplicationDate.Equal(out[j].ApplicationDate.Time) {
			return out[i].ApplicationDate.Before(out[j].ApplicationDate.Time)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) ListPositionsPage(ctx context.Context, userID uuid.UUID, opts types.PositionListOptions) ([]types.Position, int, error) {
	all, err := f.ListPositions(ctx, userID, &types.StatisticsFilters{
		StartDate: opts.DateFrom,
		EndDate:   opts.DateTo,
		Company:   opts.Company,
		Status:    opts.Status,
	})
	if err != nil {
		return nil, 0, err
	}

	matched := all[:0]
	for _, p := range all {
		if opts.Search != "" {
			needle := strings.ToLower(opts.Search)
			haystack := strings.ToLower(p.Title + " " + p.Company + " " + p.Description)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		matched = append(matched, p)
	}
	if opts.SortOrder != "asc" {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	total := len(matched)
	start := (opts.Page - 1) * opts.PerPage
	if start > total {
		start = total
	}
	end := start + opts.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeStore) ownsPosition(userID, positionID uuid.UUID) bool {
	p, ok := f.positions[positionID]
	return ok && p.UserID == userID
}

func (f *fakeStore) CreateInterview(_ context.Context, userID, positionID uuid.UUID, req *types.CreateInterviewRequest) (*types.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ownsPosition(userID, positionID) {
		return nil, nil
	}
	outcome := req.Outcome
	if outcome == "" {
		outcome = types.OutcomePending
	}
	now := time.Now().UTC()
	iv := &types.Interview{
		ID:              uuid.New(),
		PositionID:      positionID,
		Type:            req.Type,
		Place:           req.Place,
		ScheduledDate:   req.ScheduledDate.UTC(),
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Outcome:         outcome,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.interviews[iv.ID] = iv
	cp := *iv
	return &cp, nil
}

func (f *fakeStore) GetInterview(_ context.Context, userID, id uuid.UUID) (*types.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.interviews[id]
	if !ok || !f.ownsPosition(userID, iv.PositionID) {
		return nil, nil
	}
	cp := *iv
	return &cp, nil
}

func (f *fakeStore) UpdateInterview(_ context.Context, userID uuid.UUID, iv *types.Interview) (*types.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.interviews[iv.ID]
	if !ok || !f.ownsPosition(userID, existing.PositionID) {
		return nil, nil
	}
	updated := *iv
	updated.PositionID = existing.PositionID
	updated.UpdatedAt = time.Now().UTC()
	f.interviews[iv.ID] = &updated
	cp := updated
	return &cp, nil
}

func (f *fakeStore) DeleteInterview(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	iv, ok := f.interviews[id]
	if !ok || !f.ownsPosition(userID, iv.PositionID) {
		return db.ErrNotFound
	}
	delete(f.interviews, id)
	return nil
}

func (f *fakeStore) collectInterviews(keep func(*types.Interview) bool) []types.Interview {
	out := []types.Interview{}
	for _, iv := range f.interviews {
		if keep(iv) {
			out = append(out, *iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledDate.Before(out[j].ScheduledDate) })
	return out
}

func (f *fakeStore) ListInterviewsByPosition(_ context.Context, userID, positionID uuid.UUID) ([]types.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ownsPosition(userID, positionID) {
		return []types.Interview{}, nil
	}
	return f.collectInterviews(func(iv *types.Interview) bool { return iv.PositionID == positionID }), nil
}

func (f *fakeStore) ListInterviewsByUser(_ context.Context, userID uuid.UUID) ([]types.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collectInterviews(func(iv *types.Interview) bool { return f.ownsPosition(userID, iv.PositionID) }), nil
}

func (f *fakeStore) ListInterviewsForPositions(_ context.Context, positionIDs []uuid.UUID) ([]types.Interview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(positionIDs))
	for _, id := range positionIDs {
		wanted[id] = true
	}
	return f.collectInterviews(func(iv *types.Interview) bool { return wanted[iv.PositionID] }), nil
}

var errStoreDown = errors.New("connection refused")
