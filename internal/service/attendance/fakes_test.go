package attendance

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/master/branch"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/civiltime"
)

// memStore backs the in-memory repositories. Every method takes mu, so a
// single call is atomic the way a single SQL statement is.
type memStore struct {
	mu       sync.Mutex
	users    map[string]user.User
	branches map[string]branch.Branch
	records  map[string]attendance.Attendance
	seq      int
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]user.User{},
		branches: map[string]branch.Branch{},
		records:  map[string]attendance.Attendance{},
	}
}

func (m *memStore) addUser(u user.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *memStore) addBranch(b branch.Branch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.branches[b.ID] = b
}

// seed inserts a record without any constraint checks.
func (m *memStore) seed(a attendance.Attendance) attendance.Attendance {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		m.seq++
		a.ID = fmt.Sprintf("att-%d", m.seq)
	}
	m.records[a.ID] = a
	return a
}

func (m *memStore) get(id string) attendance.Attendance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id]
}

func (m *memStore) byUser(userID string) []attendance.Attendance {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range m.records {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInAt.Before(out[j].CheckInAt) })
	return out
}

func (m *memStore) openCount(userID string) int {
	n := 0
	for _, a := range m.byUser(userID) {
		if a.IsOpen() {
			n++
		}
	}
	return n
}

// serialTransactor runs one transaction at a time and restores the records
// table when fn fails.
type serialTransactor struct {
	mu    sync.Mutex
	store *memStore
}

func (t *serialTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.store.mu.Lock()
	snapshot := maps.Clone(t.store.records)
	t.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.store.mu.Lock()
		t.store.records = snapshot
		t.store.mu.Unlock()
		return err
	}
	return nil
}

// passthroughTransactor provides no isolation, leaving races to the
// repository constraints.
type passthroughTransactor struct{}

func (passthroughTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memAttendanceRepo struct{ *memStore }

func (r memAttendanceRepo) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Same precedence as the PostgreSQL store: the work date key first,
	// classified by whether the conflicting record is still open.
	for _, existing := range r.records {
		if existing.UserID == a.UserID && existing.WorkDate == a.WorkDate {
			if existing.IsOpen() {
				return attendance.Attendance{}, attendance.ErrAlreadyOpenToday
			}
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedInToday
		}
	}
	for _, existing := range r.records {
		if existing.UserID == a.UserID && existing.IsOpen() {
			return attendance.Attendance{}, attendance.ErrAlreadyOpenToday
		}
	}
	r.seq++
	a.ID = fmt.Sprintf("att-%d", r.seq)
	a.CreatedAt, a.UpdatedAt = a.CheckInAt, a.CheckInAt
	r.records[a.ID] = a
	return a, nil
}

func (r memAttendanceRepo) FindOpenByUser(_ context.Context, userID string) (*attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.UserID == userID && a.IsOpen() {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (r memAttendanceRepo) FindByUserAndDate(_ context.Context, userID string, date civiltime.Date) (*attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.records {
		if a.UserID == userID && a.WorkDate == date {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (r memAttendanceRepo) Close(_ context.Context, id string, p attendance.CloseParams) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[id]
	if !ok || !a.IsOpen() {
		return attendance.Attendance{}, attendance.ErrNoOpenAttendance
	}
	out := p.CheckOutAt
	a.CheckOutAt = &out
	a.CheckOutReason = p.Reason
	a.CheckOutLatitude = p.Latitude
	a.CheckOutLongitude = p.Longitude
	r.records[id] = a
	return a, nil
}

func (r memAttendanceRepo) List(_ context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.records {
		u := r.users[a.UserID]
		if filter.BranchID != nil && (u.BranchID == nil || *u.BranchID != *filter.BranchID) {
			continue
		}
		if filter.From != nil && a.WorkDate.String() < *filter.From {
			continue
		}
		if filter.To != nil && a.WorkDate.String() > *filter.To {
			continue
		}
		a.UserName, a.StaffID = &u.Name, &u.StaffID
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInAt.After(out[j].CheckInAt) })
	limit := filter.Limit
	if limit <= 0 {
		limit = attendance.DefaultAdminListLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memAttendanceRepo) ListByUser(_ context.Context, userID string, limit int) ([]attendance.Attendance, error) {
	r.mu.Lock()
	var out []attendance.Attendance
	for _, a := range r.records {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInAt.After(out[j].CheckInAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memAttendanceRepo) ListOpenUserIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, a := range r.records {
		if a.IsOpen() {
			ids = append(ids, a.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r memAttendanceRepo) ListCheckInsBetween(_ context.Context, from, to time.Time) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range r.records {
		if !a.CheckInAt.Before(from) && a.CheckInAt.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type memUserRepo struct{ *memStore }

func (r memUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r memUserRepo) GetByStaffID(_ context.Context, staffID string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.StaffID == staffID {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r memUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return u, nil
}

func (r memUserRepo) Update(context.Context, user.UpdateStaffRequest) error {
	return errors.New("not supported")
}

func (r memUserRepo) UpdatePassword(context.Context, string, string) error {
	return errors.New("not supported")
}

func (r memUserRepo) ListByRole(_ context.Context, role user.Role) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []user.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r memUserRepo) ExistsByRole(ctx context.Context, role user.Role) (bool, error) {
	users, err := r.ListByRole(ctx, role)
	return len(users) > 0, err
}

func (r memUserRepo) Delete(context.Context, string) error {
	return errors.New("not supported")
}

type memBranchRepo struct{ *memStore }

func (r memBranchRepo) Create(_ context.Context, b branch.Branch) (branch.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.branches[b.ID] = b
	return b, nil
}

func (r memBranchRepo) GetByID(_ context.Context, id string) (branch.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.branches[id]
	if !ok {
		return branch.Branch{}, branch.ErrBranchNotFound
	}
	return b, nil
}

func (r memBranchRepo) List(context.Context) ([]branch.Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedValues(r.branches), nil
}

func (r memBranchRepo) Update(context.Context, branch.UpdateBranchRequest) error {
	return errors.New("not supported")
}

func (r memBranchRepo) Delete(context.Context, string) error {
	return errors.New("not supported")
}

func sortedValues(m map[string]branch.Branch) []branch.Branch {
	out := make([]branch.Branch, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
