package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civiceye/internal/domain"
	"github.com/spec-kit/civiceye/internal/repository"
)

// fakeComplaintRepo is an in-memory stand-in that preserves the transactional
// guarantees of the real repository: Create allocates unique display IDs under
// a lock, and UpdateStatusWithTrail either applies both writes or neither.
type fakeComplaintRepo struct {
	mu        sync.Mutex
	nextID    int64
	seqByYear map[int]int64
	byID      map[int64]*domain.Complaint
	trails    map[int64][]domain.ComplaintUpdate

	failTrail bool
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{
		seqByYear: make(map[int]int64),
		byID:      make(map[int64]*domain.Complaint),
		trails:    make(map[int64][]domain.ComplaintUpdate),
	}
}

func (f *fakeComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	year := time.Now().Year()
	f.seqByYear[year]++
	f.nextID++

	complaint.ID = f.nextID
	complaint.DisplayID = fmt.Sprintf("CE-%d-%04d", year, f.seqByYear[year])
	complaint.CreatedAt = time.Now()
	complaint.UpdatedAt = complaint.CreatedAt

	stored := *complaint
	f.byID[complaint.ID] = &stored
	return nil
}

func (f *fakeComplaintRepo) GetByID(_ context.Context, id int64) (*domain.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeComplaintRepo) ListWithFilter(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Complaint
	for _, c := range f.byID {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeComplaintRepo) ListLatest(_ context.Context, limit int) ([]domain.Complaint, error) {
	all, err := f.ListWithFilter(context.Background(), repository.ComplaintFilter{})
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeComplaintRepo) UpdateStatusWithTrail(_ context.Context, id int64, status domain.ComplaintStatus, message string) (*domain.ComplaintUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if f.failTrail {
		return nil, fmt.Errorf("trail insert failed")
	}

	stored.Status = status
	stored.UpdatedAt = time.Now()
	entry := domain.ComplaintUpdate{
		ID:          int64(len(f.trails[id]) + 1),
		ComplaintID: id,
		Message:     message,
		Status:      status,
		CreatedAt:   stored.UpdatedAt,
	}
	f.trails[id] = append(f.trails[id], entry)
	return &entry, nil
}

func (f *fakeComplaintRepo) Stats(_ context.Context) (*repository.ComplaintStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stats := &repository.ComplaintStats{}
	for _, c := range f.byID {
		stats.Total++
		switch c.Status {
		case domain.ComplaintStatusPending:
			stats.Pending++
		case domain.ComplaintStatusInProgress:
			stats.InProgress++
		case domain.ComplaintStatusResolved:
			stats.Resolved++
		}
	}
	return stats, nil
}

type fakeTrailRepo struct {
	complaints *fakeComplaintRepo
}

func (f *fakeTrailRepo) ListByComplaint(_ context.Context, complaintID int64) ([]domain.ComplaintUpdate, error) {
	f.complaints.mu.Lock()
	defer f.complaints.mu.Unlock()
	trail := append([]domain.ComplaintUpdate{}, f.complaints.trails[complaintID]...)
	return trail, nil
}

type fakeDepartmentRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{byID: make(map[int64]*domain.Department)}
}

func (f *fakeDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	dept.ID = f.nextID
	dept.CreatedAt = time.Now()
	stored := *dept
	f.byID[dept.ID] = &stored
	return nil
}

func (f *fakeDepartmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Department
	for _, d := range f.byID {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDepartmentRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  []*domain.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	stored := *user
	f.users = append(f.users, &stored)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.ID == id })
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) GetByUsernameOrEmail(_ context.Context, identifier string) (*domain.User, error) {
	return f.find(func(u *domain.User) bool { return u.Username == identifier || u.Email == identifier })
}

func (f *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeAuthorityRepo struct {
	mu          sync.Mutex
	nextID      int64
	authorities []*domain.Authority
}

func (f *fakeAuthorityRepo) Create(_ context.Context, authority *domain.Authority) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	authority.ID = f.nextID
	authority.CreatedAt = time.Now()
	stored := *authority
	f.authorities = append(f.authorities, &stored)
	return nil
}

func (f *fakeAuthorityRepo) GetByID(_ context.Context, id int64) (*domain.Authority, error) {
	return f.find(func(a *domain.Authority) bool { return a.ID == id })
}

func (f *fakeAuthorityRepo) GetByUsername(_ context.Context, username string) (*domain.Authority, error) {
	return f.find(func(a *domain.Authority) bool { return a.Username == username })
}

func (f *fakeAuthorityRepo) find(match func(*domain.Authority) bool) (*domain.Authority, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.authorities {
		if match(a) {
			copied := *a
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}
