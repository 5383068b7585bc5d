package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/policy"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
	"github.com/pesio-ai/be-product-catalog/internal/repository/repositorytest"
	"github.com/pesio-ai/be-product-catalog/internal/service"
)

func TestApprove_QueuedCreateAddsItem(t *testing.T) {
	f := newFixture(t, policy.DefaultConfig())
	ctx := context.Background()

	queued, err := f.catalog.CreateItem(ctx, service.ItemInput{Name: "Widget", Price: strPtr("6000")})
	require.NoError(t, err)
	require.Equal(t, service.OutcomeQueued, queued.Outcome)

	res, err := f.approvals.Approve(ctx, queued.Approval.ID)
	require.NoError(t, err)

	assert.Equal(t, service.OutcomeApprovedCreated, res.Outcome)
	assert.Equal(t, "Product approved successfully and product added", res.Message)
	require.NotNil(t, res.Item)

	stored := f.item(t, res.Item.ID)
	assert.Equal(t, "Widget", stored.Name)
	assert.True(t, stored.Price.Decimal.Equal(decimal.NewFromInt(6000)))
	assert.Equal(t, repository.StatusActive, stored.Status)
	assert.True(t, stored.PostedDate.Equal(fixedNow))

	assert.Empty(t, f.queue(t))
	assert.Equal(t, []string{service.EventApprovalQueued, service.EventApprovalApproved}, f.events.Types())
}

func TestApprove_QueuedUpdateOverwritesItem(t *testing.T) {
	f := newFixture(t, policy.DefaultConfig())
	ctx := context.Background()
	existing := f.seed(t, "Widget", "5000", repositorytest.At(1))

	queued, err := f.catalog.UpdateItem(ctx, existing.ID, service.ItemInput{Name: "Widget Pro", Price: strPtr("9000")})
	require.NoError(t, err)

	res, err := f.approvals.Approve(ctx, queued.Approval.ID)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeApprovedUpdated, res.Outcome)
	assert.Equal(t, "Product approved successfully and product updated", res.Message)
	assert.Equal(t, existing.ID, res.Item.ID)

	stored := f.item(t, existing.ID)
	assert.Equal(t, "Widget Pro", stored.Name)
	assert.True(t, stored.Price.Decimal.Equal(decimal.NewFromInt(9000)))
	assert.True(t, stored.PostedDate.Equal(fixedNow))
	assert.Empty(t, f.queue(t))
}

func TestApprove_QueuedRemovalKeepsItemInactive(t *testing.T) {
	f := newFixture(t, policy.DefaultConfig())
	ctx := context.Background()
	existing := f.seed(t, "Widget", "100", repositorytest.At(1))

	queued, err := f.catalog.RemoveItem(ctx, existing.ID)
	require.NoError(t, err)

	res, err := f.approvals.Approve(ctx, queued.Approval.ID)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeApprovedUpdated, res.Outcome)
	assert.Equal(t, repository.StatusInactive, f.item(t, existing.ID).Status)
}

func TestApprove_StaleProductIDConsumesRequest(t *testing.T) {
	f := newFixture(t, policy.DefaultConfig())
	ctx := context.Background()

	stale := "00000000-0000-0000-0000-000000000000"
	req := &repository.ApprovalRequest{
		Name:           "Ghost",
		Price:          repositorytest.Price("10"),
		Status:         repository.StatusActive,
		ApprovalAction: repository.DefaultApprovalAction,
		ProductID:      &stale,
	}
	require.NoError(t, f.store.Approvals().Create(ctx, req))

	res, err := f.approvals.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeApprovedNoChange, res.Outcome)
	assert.Equal(t, "Product approval process completed", res.Message)
	assert.Nil(t, res.Item)

	assert.Zero(t, f.store.ItemSaves())
	assert.Empty(t, f.queue(t))
	_, err = f.catalog.GetItem(ctx, stale)
	assert.True(t, errors.IsNotFound(err))
}

func TestReject_LeavesCatalogUnchanged(t *testing.T) {
	f := newFixture(t, policy.DefaultConfig())
	ctx := context.Background()
	existing := f.seed(t, "Widget", "5000", repositorytest.At(1))

	queued, err := f.catalog.UpdateItem(ctx, existing.ID, service.ItemInput{Name: "Widget", Price: strPtr("9000")})
	require.NoError(t, err)
	saves := f.store.ItemSaves()

	res, err := f.approvals.Reject(ctx, queued.Approval.ID)
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeRejected, res.Outcome)
	assert.Equal(t, "Product Rejected Successfully", res.Message)
	assert.Nil(t, res.Item)

	assert.Equal(t, saves, f.store.ItemSaves())
	assert.True(t, f.item(t, existing.ID).Price.Decimal.Equal(decimal.NewFromInt(5000)))
	assert.Empty(t, f.queue(t))
	assert.Contains(t, f.events.Types(), service.EventApprovalRejected)
}

func TestReject_QueuedRemovalStaysInactive(t *testing.T) {
	f := newFixture(t, policy.DefaultConfig())
	ctx := context.Background()
	existing := f.seed(t, "Widget", "100", repositorytest.At(1))

	queued, err := f.catalog.RemoveItem(ctx, existing.ID)
	require.NoError(t, err)

	_, err = f.approvals.Reject(ctx, queued.Approval.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.StatusInactive, f.item(t, existing.ID).Status)
}

func TestResolve_SecondCallIsNotFound(t *testing.T) {
	f := newFixture(t, policy.DefaultConfig())
	ctx := context.Background()

	queued, err := f.catalog.CreateItem(ctx, service.ItemInput{Name: "Widget", Price: strPtr("6000")})
	require.NoError(t, err)

	_, err = f.approvals.Approve(ctx, queued.Approval.ID)
	require.NoError(t, err)

	_, err = f.approvals.Approve(ctx, queued.Approval.ID)
	assert.True(t, errors.IsNotFound(err))
	_, err = f.approvals.Reject(ctx, queued.Approval.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestResolve_MissingOrEmptyID(t *testing.T) {
	f := newFixture(t, policy.DefaultConfig())
	ctx := context.Background()

	_, err := f.approvals.Approve(ctx, "")
	assert.True(t, errors.IsInvalidInput(err))
	_, err = f.approvals.Reject(ctx, "")
	assert.True(t, errors.IsInvalidInput(err))

	_, err = f.approvals.Approve(ctx, "unknown")
	assert.True(t, errors.IsNotFound(err))
	_, err = f.approvals.Reject(ctx, "unknown")
	assert.True(t, errors.IsNotFound(err))
}

func TestResolve_ConcurrentDecisionsOnlyOneWins(t *testing.T) {
	f := newFixture(t, policy.DefaultConfig())
	ctx := context.Background()

	queued, err := f.catalog.CreateItem(ctx, service.ItemInput{Name: "Widget", Price: strPtr("6000")})
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = f.approvals.Approve(ctx, queued.Approval.ID)
			} else {
				_, err = f.approvals.Reject(ctx, queued.Approval.ID)
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.IsNotFound(err):
				notFound++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, notFound)
	assert.Empty(t, f.queue(t))

	items, err := f.catalog.ListActiveItems(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(items), 1)
}

func TestListApprovalQueue_OldestFirst(t *testing.T) {
	f := newFixture(t, policy.DefaultConfig())
	ctx := context.Background()

	first, err := f.catalog.CreateItem(ctx, service.ItemInput{Name: "First", Price: strPtr("6000")})
	require.NoError(t, err)
	second, err := f.catalog.CreateItem(ctx, service.ItemInput{Name: "Second", Price: strPtr("7000")})
	require.NoError(t, err)

	queue := f.queue(t)
	require.Len(t, queue, 2)
	assert.Equal(t, first.Approval.ID, queue[0].ID)
	assert.Equal(t, second.Approval.ID, queue[1].ID)

	got, err := f.approvals.GetApproval(ctx, second.Approval.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Name)
}
