// Package memory is an in-process Store used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

type state struct {
	items     map[string]*repository.Item
	approvals map[string]*repository.ApprovalRequest
	// seq keeps insertion order so equal dates list stably.
	seq map[string]uint64
	n   uint64
}

func (s *state) clone() *state {
	c := &state{
		items:     make(map[string]*repository.Item, len(s.items)),
		approvals: make(map[string]*repository.ApprovalRequest, len(s.approvals)),
		seq:       make(map[string]uint64, len(s.seq)),
		n:         s.n,
	}
	for k, v := range s.items {
		c.items[k] = v.Clone()
	}
	for k, v := range s.approvals {
		c.approvals[k] = v.Clone()
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	return c
}

// Store keeps both collections in memory behind a single mutex. A transaction
// holds the mutex for its whole duration and restores a snapshot on error.
type Store struct {
	mu sync.Mutex
	st *state
}

// New creates an empty store.
func New() *Store {
	return &Store{st: &state{
		items:     map[string]*repository.Item{},
		approvals: map[string]*repository.ApprovalRequest{},
		seq:       map[string]uint64{},
	}}
}

func (s *Store) Items() repository.ItemStore         { return &itemStore{s: s} }
func (s *Store) Approvals() repository.ApprovalStore { return &approvalStore{s: s} }

// InTransaction serialises fn against every other store access.
func (s *Store) InTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	tx := &txStore{st: s.st}
	if err := fn(tx); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// with runs fn under the store mutex.
func (s *Store) with(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// txStore is the view handed to InTransaction callbacks; the mutex is already held.
type txStore struct {
	st *state
}

func (t *txStore) Items() repository.ItemStore         { return &itemStore{tx: t} }
func (t *txStore) Approvals() repository.ApprovalStore { return &approvalStore{tx: t} }

func (t *txStore) InTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

func run(s *Store, tx *txStore, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx.st)
	}
	return s.with(fn)
}

// ── Items ─────────────────────────────────────────────────────────────────────

type itemStore struct {
	s  *Store
	tx *txStore
}

func (r *itemStore) Get(ctx context.Context, id string) (*repository.Item, error) {
	var out *repository.Item
	err := run(r.s, r.tx, func(st *state) error {
		item, ok := st.items[id]
		if !ok {
			return errors.NotFound("item", id)
		}
		out = item.Clone()
		return nil
	})
	return out, err
}

func (r *itemStore) GetForUpdate(ctx context.Context, id string) (*repository.Item, error) {
	return r.Get(ctx, id)
}

func (r *itemStore) Save(ctx context.Context, item *repository.Item) error {
	return run(r.s, r.tx, func(st *state) error {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if _, ok := st.seq[item.ID]; !ok {
			st.n++
			st.seq[item.ID] = st.n
		}
		st.items[item.ID] = item.Clone()
		return nil
	})
}

func (r *itemStore) ListActive(ctx context.Context) ([]*repository.Item, error) {
	return r.filter(func(i *repository.Item) bool { return i.Status == repository.StatusActive })
}

func (r *itemStore) Search(ctx context.Context, criteria repository.SearchCriteria) ([]*repository.Item, error) {
	return r.filter(criteria.Matches)
}

func (r *itemStore) filter(keep func(*repository.Item) bool) ([]*repository.Item, error) {
	var out []*repository.Item
	var seq map[string]uint64
	err := run(r.s, r.tx, func(st *state) error {
		seq = make(map[string]uint64, len(st.items))
		for _, item := range st.items {
			if keep(item) {
				out = append(out, item.Clone())
				seq[item.ID] = st.seq[item.ID]
			}
		}
		return nil
	})
	sortByPostedDateDesc(out, seq)
	return out, err
}

// sortByPostedDateDesc orders newest first; items without a posted date go
// last. Equal dates fall back to the most recent insert.
func sortByPostedDateDesc(items []*repository.Item, seq map[string]uint64) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].PostedDate, items[j].PostedDate
		switch {
		case a == nil && b == nil:
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		}
		return seq[items[i].ID] > seq[items[j].ID]
	})
}

// ── Approvals ─────────────────────────────────────────────────────────────────

type approvalStore struct {
	s  *Store
	tx *txStore
}

func (r *approvalStore) Get(ctx context.Context, id string) (*repository.ApprovalRequest, error) {
	var out *repository.ApprovalRequest
	err := run(r.s, r.tx, func(st *state) error {
		req, ok := st.approvals[id]
		if !ok {
			return errors.NotFound("approval request", id)
		}
		out = req.Clone()
		return nil
	})
	return out, err
}

func (r *approvalStore) GetForUpdate(ctx context.Context, id string) (*repository.ApprovalRequest, error) {
	return r.Get(ctx, id)
}

func (r *approvalStore) Create(ctx context.Context, req *repository.ApprovalRequest) error {
	return run(r.s, r.tx, func(st *state) error {
		req.ID = uuid.NewString()
		st.n++
		st.seq[req.ID] = st.n
		st.approvals[req.ID] = req.Clone()
		return nil
	})
}

func (r *approvalStore) Delete(ctx context.Context, id string) error {
	return run(r.s, r.tx, func(st *state) error {
		if _, ok := st.approvals[id]; !ok {
			return errors.NotFound("approval request", id)
		}
		delete(st.approvals, id)
		delete(st.seq, id)
		return nil
	})
}

func (r *approvalStore) ListPending(ctx context.Context) ([]*repository.ApprovalRequest, error) {
	var out []*repository.ApprovalRequest
	var seq map[string]uint64
	err := run(r.s, r.tx, func(st *state) error {
		seq = make(map[string]uint64, len(st.seq))
		for _, req := range st.approvals {
			out = append(out, req.Clone())
			seq[req.ID] = st.seq[req.ID]
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.ApprovalRequestDate.Equal(b.ApprovalRequestDate) {
			return a.ApprovalRequestDate.Before(b.ApprovalRequestDate)
		}
		return seq[a.ID] < seq[b.ID]
	})
	return out, err
}
