// Package memory provides an in-memory implementation of the entity store used
// for tests and ephemeral environments.
package memory

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/pkg/db/models"
)

var _ store.Store = (*Store)(nil)

type state struct {
	employees   map[uuid.UUID]models.Employee
	assets      map[uuid.UUID]models.Asset
	assignments map[uuid.UUID]models.Assignment
}

func newState() *state {
	return &state{
		employees:   make(map[uuid.UUID]models.Employee),
		assets:      make(map[uuid.UUID]models.Asset),
		assignments: make(map[uuid.UUID]models.Assignment),
	}
}

func (s *state) clone() *state {
	out := &state{
		employees:   make(map[uuid.UUID]models.Employee, len(s.employees)),
		assets:      make(map[uuid.UUID]models.Asset, len(s.assets)),
		assignments: make(map[uuid.UUID]models.Assignment, len(s.assignments)),
	}
	for k, v := range s.employees {
		out.employees[k] = v
	}
	for k, v := range s.assets {
		out.assets[k] = cloneAsset(v)
	}
	for k, v := range s.assignments {
		out.assignments[k] = cloneAssignment(v)
	}
	return out
}

// Store keeps every collection in maps guarded by one mutex.
type Store struct {
	mu    sync.RWMutex
	state *state
	nowFn func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the timestamp source for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// New constructs an empty store.
func New(opts ...Option) *Store {
	s := &Store{state: newState(), nowFn: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) root() handle { return handle{root: s} }

func (s *Store) Employees() store.Employees     { return employees{s.root()} }
func (s *Store) Assets() store.Assets           { return assets{s.root()} }
func (s *Store) Assignments() store.Assignments { return assignments{s.root()} }

// WithTx runs fn against a private copy of the state and publishes it only when
// fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	return s.root().WithTx(ctx, fn)
}

// handle routes operations either to the shared state (taking the lock per
// call) or to a transaction's private copy (lock already held).
type handle struct {
	root  *Store
	state *state
}

func (h handle) Employees() store.Employees     { return employees{h} }
func (h handle) Assets() store.Assets           { return assets{h} }
func (h handle) Assignments() store.Assignments { return assignments{h} }

func (h handle) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.state != nil {
		return fn(h)
	}

	h.root.mu.Lock()
	defer h.root.mu.Unlock()

	tx := handle{root: h.root, state: h.root.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	h.root.state = tx.state
	return nil
}

func (h handle) read(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.state != nil {
		return fn(h.state)
	}
	h.root.mu.RLock()
	defer h.root.mu.RUnlock()
	return fn(h.root.state)
}

func (h handle) write(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.state != nil {
		return fn(h.state)
	}
	h.root.mu.Lock()
	defer h.root.mu.Unlock()
	return fn(h.root.state)
}

func (h handle) now() time.Time {
	return h.root.nowFn().UTC()
}

type employees struct{ h handle }

func (r employees) List(ctx context.Context) ([]models.Employee, error) {
	var out []models.Employee
	err := r.h.read(ctx, func(st *state) error {
		out = make([]models.Employee, 0, len(st.employees))
		for _, e := range st.employees {
			out = append(out, e)
		}
		return nil
	})
	sortByCreation(out, func(e models.Employee) (time.Time, uuid.UUID) { return e.CreatedAt, e.ID })
	return out, err
}

func (r employees) Get(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var out *models.Employee
	err := r.h.read(ctx, func(st *state) error {
		e, ok := st.employees[id]
		if !ok {
			return store.ErrNotFound
		}
		out = &e
		return nil
	})
	return out, err
}

func (r employees) Create(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	var out *models.Employee
	err := r.h.write(ctx, func(st *state) error {
		if _, exists := st.employees[employee.ID]; exists {
			return store.ErrConflict
		}
		if emailTaken(st, employee.Email, uuid.Nil) {
			return store.ErrConflict
		}
		e := *employee
		stamp(&e.CreatedAt, &e.UpdatedAt, r.h.now())
		st.employees[e.ID] = e
		out = &e
		return nil
	})
	return out, err
}

func (r employees) Update(ctx context.Context, id uuid.UUID, patch store.EmployeePatch) (*models.Employee, error) {
	var out *models.Employee
	err := r.h.write(ctx, func(st *state) error {
		e, ok := st.employees[id]
		if !ok {
			return store.ErrNotFound
		}
		if patch.Email != nil && emailTaken(st, *patch.Email, id) {
			return store.ErrConflict
		}
		patch.Apply(&e)
		e.UpdatedAt = r.h.now()
		st.employees[id] = e
		out = &e
		return nil
	})
	return out, err
}

func (r employees) Delete(ctx context.Context, id uuid.UUID) error {
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.employees[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.employees, id)
		return nil
	})
}

type assets struct{ h handle }

func (r assets) List(ctx context.Context) ([]models.Asset, error) {
	var out []models.Asset
	err := r.h.read(ctx, func(st *state) error {
		out = make([]models.Asset, 0, len(st.assets))
		for _, a := range st.assets {
			out = append(out, cloneAsset(a))
		}
		return nil
	})
	sortByCreation(out, func(a models.Asset) (time.Time, uuid.UUID) { return a.CreatedAt, a.ID })
	return out, err
}

func (r assets) Get(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	var out *models.Asset
	err := r.h.read(ctx, func(st *state) error {
		a, ok := st.assets[id]
		if !ok {
			return store.ErrNotFound
		}
		a = cloneAsset(a)
		out = &a
		return nil
	})
	return out, err
}

func (r assets) Create(ctx context.Context, asset *models.Asset) (*models.Asset, error) {
	var out *models.Asset
	err := r.h.write(ctx, func(st *state) error {
		if _, exists := st.assets[asset.ID]; exists {
			return store.ErrConflict
		}
		if serialTaken(st, asset.SerialNumber, uuid.Nil) {
			return store.ErrConflict
		}
		a := cloneAsset(*asset)
		stamp(&a.CreatedAt, &a.UpdatedAt, r.h.now())
		st.assets[a.ID] = a
		res := cloneAsset(a)
		out = &res
		return nil
	})
	return out, err
}

func (r assets) Update(ctx context.Context, id uuid.UUID, patch store.AssetPatch) (*models.Asset, error) {
	var out *models.Asset
	err := r.h.write(ctx, func(st *state) error {
		a, ok := st.assets[id]
		if !ok {
			return store.ErrNotFound
		}
		if patch.SerialNumber != nil && serialTaken(st, *patch.SerialNumber, id) {
			return store.ErrConflict
		}
		a = cloneAsset(a)
		patch.Apply(&a)
		a.UpdatedAt = r.h.now()
		st.assets[id] = a
		res := cloneAsset(a)
		out = &res
		return nil
	})
	return out, err
}

func (r assets) Delete(ctx context.Context, id uuid.UUID) error {
	return r.h.write(ctx, func(st *state) error {
		if _, ok := st.assets[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.assets, id)
		return nil
	})
}

type assignments struct{ h handle }

func (r assignments) List(ctx context.Context) ([]models.Assignment, error) {
	var out []models.Assignment
	err := r.h.read(ctx, func(st *state) error {
		out = make([]models.Assignment, 0, len(st.assignments))
		for _, a := range st.assignments {
			out = append(out, cloneAssignment(a))
		}
		return nil
	})
	sortByCreation(out, func(a models.Assignment) (time.Time, uuid.UUID) { return a.CreatedAt, a.ID })
	return out, err
}

func (r assignments) Get(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var out *models.Assignment
	err := r.h.read(ctx, func(st *state) error {
		a, ok := st.assignments[id]
		if !ok {
			return store.ErrNotFound
		}
		a = cloneAssignment(a)
		out = &a
		return nil
	})
	return out, err
}

func (r assignments) Create(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	var out *models.Assignment
	err := r.h.write(ctx, func(st *state) error {
		if _, exists := st.assignments[assignment.ID]; exists {
			return store.ErrConflict
		}
		if assignment.IsActive() {
			for _, existing := range st.assignments {
				if existing.AssetID == assignment.AssetID && existing.IsActive() {
					return store.ErrConflict
				}
			}
		}
		a := cloneAssignment(*assignment)
		stamp(&a.CreatedAt, &a.UpdatedAt, r.h.now())
		st.assignments[a.ID] = a
		res := cloneAssignment(a)
		out = &res
		return nil
	})
	return out, err
}

func (r assignments) Update(ctx context.Context, id uuid.UUID, patch store.AssignmentPatch) (*models.Assignment, error) {
	var out *models.Assignment
	err := r.h.write(ctx, func(st *state) error {
		a, ok := st.assignments[id]
		if !ok {
			return store.ErrNotFound
		}
		if patch.ExpectStatus != nil && a.Status != *patch.ExpectStatus {
			return store.ErrConflict
		}
		a = cloneAssignment(a)
		patch.Apply(&a)
		a.UpdatedAt = r.h.now()
		st.assignments[id] = a
		res := cloneAssignment(a)
		out = &res
		return nil
	})
	return out, err
}

func emailTaken(st *state, email string, except uuid.UUID) bool {
	for id, e := range st.employees {
		if id != except && strings.EqualFold(e.Email, email) {
			return true
		}
	}
	return false
}

func serialTaken(st *state, serial string, except uuid.UUID) bool {
	for id, a := range st.assets {
		if id != except && a.SerialNumber == serial {
			return true
		}
	}
	return false
}

func stamp(createdAt, updatedAt *time.Time, now time.Time) {
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func sortByCreation[T any](items []T, key func(T) (time.Time, uuid.UUID)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return bytes.Compare(idi[:], idj[:]) < 0
	})
}

func cloneAsset(a models.Asset) models.Asset {
	if a.PurchasePrice != nil {
		price := *a.PurchasePrice
		a.PurchasePrice = &price
	}
	if a.AssignedTo != nil {
		id := *a.AssignedTo
		a.AssignedTo = &id
	}
	return a
}

func cloneAssignment(a models.Assignment) models.Assignment {
	if a.ReturnedDate != nil {
		d := *a.ReturnedDate
		a.ReturnedDate = &d
	}
	return a
}
