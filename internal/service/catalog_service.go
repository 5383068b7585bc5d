package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/platform/logger"
	"github.com/pesio-ai/be-product-catalog/internal/policy"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

// CatalogService handles catalog mutations and queries. Price-sensitive
// mutations are screened by the policy and either applied or queued.
type CatalogService struct {
	store     repository.Store
	policy    policy.Config
	publisher EventPublisher
	now       func() time.Time
	log       *logger.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	store repository.Store,
	cfg policy.Config,
	log *logger.Logger,
	opts ...Option,
) *CatalogService {
	o := buildOptions(opts)
	return &CatalogService{
		store:     store,
		policy:    cfg,
		publisher: o.publisher,
		now:       o.now,
		log:       log,
	}
}

// ItemInput is a proposed item state for create and update.
type ItemInput struct {
	Name   string
	Price  *string
	Status string
}

// toItem validates the raw fields that the policy does not know about: the
// price must be a decimal and the status a known value.
func (in ItemInput) toItem() (*repository.Item, error) {
	status, ok := repository.ParseStatus(in.Status)
	if !ok {
		return nil, errors.InvalidInput("status", fmt.Sprintf("unknown status %q", in.Status))
	}
	item := &repository.Item{Name: in.Name, Status: status}
	if in.Price != nil {
		p, err := ParsePrice(*in.Price)
		if err != nil {
			return nil, errors.InvalidInput("price", "price must be a decimal number")
		}
		item.Price.Decimal = p
		item.Price.Valid = true
	}
	return item, nil
}

// ── Mutations ─────────────────────────────────────────────────────────────────

// CreateItem adds a new item, or queues it when its price needs approval.
func (s *CatalogService) CreateItem(ctx context.Context, in ItemInput) (*MutationResult, error) {
	proposed, err := in.toItem()
	if err != nil {
		return nil, err
	}

	decision, err := s.policy.DecideCreate(proposed)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if decision.Disposition == policy.RouteToApproval {
		req := newRequest(proposed, nil, now)
		if err := s.store.Approvals().Create(ctx, req); err != nil {
			return nil, err
		}

		s.log.Info().
			Str("approval_id", req.ID).
			Str("name", req.Name).
			Str("reason", decision.Reason).
			Msg("Product creation queued for approval")
		s.publisher.PublishApprovalEvent(ctx, EventApprovalQueued, req, map[string]interface{}{
			"operation": "create",
		})

		return &MutationResult{
			Outcome:  OutcomeQueued,
			Message:  fmt.Sprintf("Product Added To Approval Queue as price is more than %s", s.policy.ApprovalThreshold),
			Approval: req,
		}, nil
	}

	proposed.PostedDate = &now
	if err := s.store.Items().Save(ctx, proposed); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("item_id", proposed.ID).
		Str("name", proposed.Name).
		Msg("Product created")

	return &MutationResult{Outcome: OutcomeCreated, Message: OutcomeCreated.Message(), Item: proposed}, nil
}

// UpdateItem changes an existing item, or queues the change when the new price
// is too far above the previous one.
func (s *CatalogService) UpdateItem(ctx context.Context, id string, in ItemInput) (*MutationResult, error) {
	if id == "" {
		return nil, errors.InvalidInput("id", "Product ID cannot be null")
	}
	proposed, err := in.toItem()
	if err != nil {
		return nil, err
	}

	var (
		result *MutationResult
		queued *repository.ApprovalRequest
	)
	err = s.store.InTransaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Items().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		decision, err := s.policy.DecideUpdate(existing, proposed)
		if err != nil {
			return err
		}

		now := s.now()

		if decision.Disposition == policy.RouteToApproval {
			req := newRequest(proposed, &existing.ID, now)
			if err := tx.Approvals().Create(ctx, req); err != nil {
				return err
			}
			if s.policy.EagerApplyOnQueue {
				// The stored item keeps its previous values.
				if err := tx.Items().Save(ctx, existing); err != nil {
					return err
				}
			}
			queued = req
			result = &MutationResult{
				Outcome: OutcomeQueued,
				Message: fmt.Sprintf("Product Sent for Approval as price is higher than %s%% of previous value",
					s.policy.UpdateRatio.Shift(2).String()),
				Item:     existing,
				Approval: req,
			}
			s.log.Info().
				Str("item_id", id).
				Str("approval_id", req.ID).
				Str("reason", decision.Reason).
				Msg("Product update queued for approval")
			return nil
		}

		existing.Name = proposed.Name
		existing.Price = proposed.Price
		existing.Status = proposed.Status
		existing.PostedDate = &now
		if err := tx.Items().Save(ctx, existing); err != nil {
			return err
		}
		result = &MutationResult{Outcome: OutcomeUpdated, Message: OutcomeUpdated.Message(), Item: existing}
		s.log.Info().Str("item_id", id).Msg("Product updated")
		return nil
	})
	if err != nil {
		return nil, err
	}

	if queued != nil {
		s.publisher.PublishApprovalEvent(ctx, EventApprovalQueued, queued, map[string]interface{}{
			"operation": "update",
		})
	}
	return result, nil
}

// RemoveItem queues a removal. Removals always need approval.
func (s *CatalogService) RemoveItem(ctx context.Context, id string) (*MutationResult, error) {
	if id == "" {
		return nil, errors.InvalidInput("id", "Product ID cannot be null")
	}

	var result *MutationResult
	err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Items().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		decision := s.policy.DecideRemove(existing)
		now := s.now()

		snapshot := existing.Clone()
		snapshot.Status = repository.StatusInactive
		req := newRequest(snapshot, &existing.ID, now)
		if err := tx.Approvals().Create(ctx, req); err != nil {
			return err
		}

		if s.policy.EagerApplyOnQueue {
			existing.Status = repository.StatusInactive
			if err := tx.Items().Save(ctx, existing); err != nil {
				return err
			}
		}

		result = &MutationResult{
			Outcome:  OutcomeQueuedForDeletion,
			Message:  OutcomeQueuedForDeletion.Message(),
			Item:     existing,
			Approval: req,
		}
		s.log.Info().
			Str("item_id", id).
			Str("approval_id", req.ID).
			Str("reason", decision.Reason).
			Msg("Product removal queued for approval")
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishApprovalEvent(ctx, EventApprovalQueued, result.Approval, map[string]interface{}{
		"operation": "remove",
	})
	return result, nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

// GetItem retrieves an item by ID regardless of status.
func (s *CatalogService) GetItem(ctx context.Context, id string) (*repository.Item, error) {
	if id == "" {
		return nil, errors.InvalidInput("id", "Product ID cannot be null")
	}
	return s.store.Items().Get(ctx, id)
}

// ListActiveItems lists ACTIVE items, newest first.
func (s *CatalogService) ListActiveItems(ctx context.Context) ([]*repository.Item, error) {
	items, err := s.store.Items().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*repository.Item{}
	}
	return items, nil
}

// SearchItems validates the criteria and runs the any-of search. With no
// criteria it lists every ACTIVE item.
func (s *CatalogService) SearchItems(ctx context.Context, c repository.SearchCriteria) (*SearchResult, error) {
	if c.IsEmpty() {
		items, err := s.ListActiveItems(ctx)
		if err != nil {
			return nil, err
		}
		return &SearchResult{Items: items}, nil
	}

	if err := ValidateSearch(c); err != nil {
		return nil, err
	}

	items, err := s.store.Items().Search(ctx, c)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Bool("by_name", c.Name != nil).
		Bool("by_price", c.HasPriceRange()).
		Bool("by_date", c.HasDateRange()).
		Int("count", len(items)).
		Msg("Product search")

	if len(items) == 0 {
		return &SearchResult{Items: []*repository.Item{}, NoRecords: true, Message: "No records found"}, nil
	}
	return &SearchResult{Items: items}, nil
}

// ValidateSearch rejects inverted ranges. A one-sided range is open-ended.
func ValidateSearch(c repository.SearchCriteria) error {
	if c.MinPrice != nil && c.MaxPrice != nil && c.MinPrice.GreaterThanOrEqual(*c.MaxPrice) {
		return errors.InvalidInput("maxPrice", "maxPrice should be greater than minPrice")
	}
	if c.MinPostedDate != nil && c.MaxPostedDate != nil && c.MinPostedDate.After(*c.MaxPostedDate) {
		return errors.InvalidInput("maxPostedDate", "maxPostedDate should not be before minPostedDate")
	}
	return nil
}

func newRequest(proposed *repository.Item, productID *string, now time.Time) *repository.ApprovalRequest {
	var pid *string
	if productID != nil {
		id := *productID
		pid = &id
	}
	return &repository.ApprovalRequest{
		Name:                proposed.Name,
		Price:               proposed.Price,
		Status:              proposed.Status,
		PostedDate:          &now,
		ApprovalAction:      repository.DefaultApprovalAction,
		ApprovalRequestDate: now,
		ProductID:           pid,
	}
}
