package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-product-catalog/internal/platform/logger"
	"github.com/pesio-ai/be-product-catalog/internal/policy"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
	"github.com/pesio-ai/be-product-catalog/internal/repository/memory"
	"github.com/pesio-ai/be-product-catalog/internal/service"
)

var fixedNow = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func strPtr(s string) *string { return &s }

// countingStore wraps a Store and counts item writes, including those made
// inside transactions.
type countingStore struct {
	repository.Store
	mu    *sync.Mutex
	saves *int
}

func newCountingStore() *countingStore {
	return &countingStore{Store: memory.New(), mu: &sync.Mutex{}, saves: new(int)}
}

func (c *countingStore) Items() repository.ItemStore {
	return &countingItems{ItemStore: c.Store.Items(), parent: c}
}

func (c *countingStore) InTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return c.Store.InTransaction(ctx, func(tx repository.Store) error {
		return fn(&countingStore{Store: tx, mu: c.mu, saves: c.saves})
	})
}

func (c *countingStore) ItemSaves() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.saves
}

type countingItems struct {
	repository.ItemStore
	parent *countingStore
}

func (i *countingItems) Save(ctx context.Context, item *repository.Item) error {
	i.parent.mu.Lock()
	*i.parent.saves++
	i.parent.mu.Unlock()
	return i.ItemStore.Save(ctx, item)
}

type recordedEvent struct {
	Type      string
	RequestID string
	Data      map[string]interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishApprovalEvent(_ context.Context, eventType string, req *repository.ApprovalRequest, data map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, RequestID: req.ID, Data: data})
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store     *countingStore
	catalog   *service.CatalogService
	approvals *service.ApprovalService
	events    *recordingPublisher
}

func newFixture(t *testing.T, cfg policy.Config) *fixture {
	t.Helper()
	store := newCountingStore()
	events := &recordingPublisher{}
	opts := []service.Option{service.WithClock(clock), service.WithPublisher(events)}
	return &fixture{
		store:     store,
		catalog:   service.NewCatalogService(store, cfg, logger.Nop(), opts...),
		approvals: service.NewApprovalService(store, logger.Nop(), opts...),
		events:    events,
	}
}

// seed stores an item directly, bypassing the policy.
func (f *fixture) seed(t *testing.T, name, price string, posted *time.Time) *repository.Item {
	t.Helper()
	item := &repository.Item{Name: name, Status: repository.StatusActive, PostedDate: posted}
	if price != "" {
		p, err := service.ParsePrice(price)
		require.NoError(t, err)
		item.Price.Decimal = p
		item.Price.Valid = true
	}
	require.NoError(t, f.store.Store.Items().Save(context.Background(), item))
	return item
}

func (f *fixture) queue(t *testing.T) []*repository.ApprovalRequest {
	t.Helper()
	reqs, err := f.approvals.ListApprovalQueue(context.Background())
	require.NoError(t, err)
	return reqs
}

func (f *fixture) item(t *testing.T, id string) *repository.Item {
	t.Helper()
	item, err := f.catalog.GetItem(context.Background(), id)
	require.NoError(t, err)
	return item
}
