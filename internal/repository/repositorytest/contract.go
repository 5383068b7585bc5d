// Package repositorytest holds the behavioural contract every repository.Store
// implementation is tested against.
package repositorytest

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

// Factory returns a fresh, empty store.
type Factory func(t *testing.T) repository.Store

// Price builds a valid NullDecimal from a string literal.
func Price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// At returns a UTC timestamp on 2025-01-<day> at noon.
func At(day int) *time.Time {
	t := time.Date(2025, time.January, day, 12, 0, 0, 0, time.UTC)
	return &t
}

// RunStoreContract runs the shared store behaviour tests.
func RunStoreContract(t *testing.T, newStore Factory) {
	t.Run("item_save_assigns_id_and_get_round_trips", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		item := &repository.Item{Name: "Widget", Price: Price("3000"), Status: repository.StatusActive, PostedDate: At(1)}
		require.NoError(t, store.Items().Save(ctx, item))
		require.NotEmpty(t, item.ID)

		got, err := store.Items().Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Widget", got.Name)
		assert.True(t, got.Price.Decimal.Equal(decimal.NewFromInt(3000)))
		assert.Equal(t, repository.StatusActive, got.Status)
		require.NotNil(t, got.PostedDate)
		assert.True(t, got.PostedDate.Equal(*At(1)))
	})

	t.Run("item_save_overwrites_existing_row", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		item := &repository.Item{Name: "Widget", Price: Price("10"), Status: repository.StatusActive, PostedDate: At(1)}
		require.NoError(t, store.Items().Save(ctx, item))
		id := item.ID

		item.Name = "Gadget"
		item.Price = Price("20.50")
		item.Status = repository.StatusInactive
		require.NoError(t, store.Items().Save(ctx, item))
		assert.Equal(t, id, item.ID)

		got, err := store.Items().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Gadget", got.Name)
		assert.True(t, got.Price.Decimal.Equal(decimal.RequireFromString("20.50")))
		assert.Equal(t, repository.StatusInactive, got.Status)
	})

	t.Run("item_without_price_or_posted_date", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		item := &repository.Item{Name: "Unpriced", Status: repository.StatusActive}
		require.NoError(t, store.Items().Save(ctx, item))

		got, err := store.Items().Get(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, got.Price.Valid)
		assert.Nil(t, got.PostedDate)
	})

	t.Run("item_get_missing_is_not_found", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Items().Get(context.Background(), missingID)
		assert.True(t, errors.IsNotFound(err), "got %v", err)
	})

	t.Run("list_active_orders_newest_first", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		seed(t, store,
			&repository.Item{Name: "old", Price: Price("1"), Status: repository.StatusActive, PostedDate: At(1)},
			&repository.Item{Name: "new", Price: Price("2"), Status: repository.StatusActive, PostedDate: At(3)},
			&repository.Item{Name: "mid", Price: Price("3"), Status: repository.StatusActive, PostedDate: At(2)},
			&repository.Item{Name: "gone", Price: Price("4"), Status: repository.StatusInactive, PostedDate: At(4)},
		)

		items, err := store.Items().ListActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"new", "mid", "old"}, names(items))
	})

	t.Run("search_matches_any_filter_active_only", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		seed(t, store,
			&repository.Item{Name: "Widget", Price: Price("9000"), Status: repository.StatusActive, PostedDate: At(1)},
			&repository.Item{Name: "Cheap", Price: Price("150"), Status: repository.StatusActive, PostedDate: At(2)},
			&repository.Item{Name: "Recent", Price: Price("8000"), Status: repository.StatusActive, PostedDate: At(20)},
			&repository.Item{Name: "Hidden", Price: Price("150"), Status: repository.StatusInactive, PostedDate: At(21)},
		)

		name := "widget"
		minPrice, maxPrice := decimal.NewFromInt(100), decimal.NewFromInt(200)
		items, err := store.Items().Search(ctx, repository.SearchCriteria{
			Name:          &name,
			MinPrice:      &minPrice,
			MaxPrice:      &maxPrice,
			MinPostedDate: At(19),
			MaxPostedDate: At(25),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Recent", "Cheap", "Widget"}, names(items))
	})

	t.Run("search_open_ended_price_range", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		seed(t, store,
			&repository.Item{Name: "a", Price: Price("100"), Status: repository.StatusActive, PostedDate: At(1)},
			&repository.Item{Name: "b", Price: Price("5000"), Status: repository.StatusActive, PostedDate: At(2)},
		)

		minPrice := decimal.NewFromInt(1000)
		items, err := store.Items().Search(ctx, repository.SearchCriteria{MinPrice: &minPrice})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, names(items))
	})

	t.Run("search_no_match_is_empty", func(t *testing.T) {
		store := newStore(t)
		name := "nothing"
		items, err := store.Items().Search(context.Background(), repository.SearchCriteria{Name: &name})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("approval_create_get_delete", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		productID := "p-1"
		req := &repository.ApprovalRequest{
			Name:                "Widget",
			Price:               Price("6000"),
			Status:              repository.StatusActive,
			PostedDate:          At(5),
			ApprovalAction:      repository.DefaultApprovalAction,
			ApprovalRequestDate: *At(5),
			ProductID:           &productID,
		}
		require.NoError(t, store.Approvals().Create(ctx, req))
		require.NotEmpty(t, req.ID)

		got, err := store.Approvals().Get(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, "Widget", got.Name)
		assert.Equal(t, repository.DefaultApprovalAction, got.ApprovalAction)
		require.NotNil(t, got.ProductID)
		assert.Equal(t, productID, *got.ProductID)

		require.NoError(t, store.Approvals().Delete(ctx, req.ID))
		_, err = store.Approvals().Get(ctx, req.ID)
		assert.True(t, errors.IsNotFound(err))
		assert.True(t, errors.IsNotFound(store.Approvals().Delete(ctx, req.ID)))
	})

	t.Run("approval_without_product_id", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		req := &repository.ApprovalRequest{
			Name: "New", Price: Price("7000"), Status: repository.StatusActive,
			ApprovalAction: repository.DefaultApprovalAction, ApprovalRequestDate: *At(1),
		}
		require.NoError(t, store.Approvals().Create(ctx, req))

		got, err := store.Approvals().Get(ctx, req.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ProductID)
	})

	t.Run("approval_list_pending_oldest_first", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		for _, day := range []int{3, 1, 2} {
			require.NoError(t, store.Approvals().Create(ctx, &repository.ApprovalRequest{
				Name: "r", Price: Price("6000"), Status: repository.StatusActive,
				ApprovalAction: repository.DefaultApprovalAction, ApprovalRequestDate: *At(day),
			}))
		}

		pending, err := store.Approvals().ListPending(ctx)
		require.NoError(t, err)
		require.Len(t, pending, 3)
		for i, day := range []int{1, 2, 3} {
			assert.True(t, pending[i].ApprovalRequestDate.Equal(*At(day)))
		}
	})

	t.Run("transaction_rolls_back_on_error", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		item := &repository.Item{Name: "Stable", Price: Price("10"), Status: repository.StatusActive, PostedDate: At(1)}
		require.NoError(t, store.Items().Save(ctx, item))

		boom := stderrors.New("boom")
		err := store.InTransaction(ctx, func(tx repository.Store) error {
			changed := item.Clone()
			changed.Name = "Changed"
			if err := tx.Items().Save(ctx, changed); err != nil {
				return err
			}
			if err := tx.Approvals().Create(ctx, &repository.ApprovalRequest{
				Name: "r", Price: Price("6000"), Status: repository.StatusActive,
				ApprovalAction: repository.DefaultApprovalAction, ApprovalRequestDate: *At(1),
			}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := store.Items().Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "Stable", got.Name)

		pending, err := store.Approvals().ListPending(ctx)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("transaction_commits", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		var id string
		err := store.InTransaction(ctx, func(tx repository.Store) error {
			item := &repository.Item{Name: "Committed", Price: Price("10"), Status: repository.StatusActive, PostedDate: At(1)}
			if err := tx.Items().Save(ctx, item); err != nil {
				return err
			}
			id = item.ID
			_, err := tx.Items().GetForUpdate(ctx, id)
			return err
		})
		require.NoError(t, err)

		got, err := store.Items().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Committed", got.Name)
	})
}

// missingID is a well-formed identifier that no store will have assigned.
const missingID = "00000000-0000-0000-0000-000000000000"

func seed(t *testing.T, store repository.Store, items ...*repository.Item) {
	t.Helper()
	for _, item := range items {
		require.NoError(t, store.Items().Save(context.Background(), item))
	}
}

func names(items []*repository.Item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Name)
	}
	return out
}
