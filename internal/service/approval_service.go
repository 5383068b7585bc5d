package service

import (
	"context"
	"time"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/platform/logger"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

// ApprovalService resolves queued catalog mutations.
type ApprovalService struct {
	store     repository.Store
	publisher EventPublisher
	now       func() time.Time
	log       *logger.Logger
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(store repository.Store, log *logger.Logger, opts ...Option) *ApprovalService {
	o := buildOptions(opts)
	return &ApprovalService{
		store:     store,
		publisher: o.publisher,
		now:       o.now,
		log:       log,
	}
}

// ── Queue ─────────────────────────────────────────────────────────────────────

// ListApprovalQueue returns every pending request, oldest first.
func (s *ApprovalService) ListApprovalQueue(ctx context.Context) ([]*repository.ApprovalRequest, error) {
	reqs, err := s.store.Approvals().ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []*repository.ApprovalRequest{}
	}
	return reqs, nil
}

// GetApproval retrieves a pending request.
func (s *ApprovalService) GetApproval(ctx context.Context, id string) (*repository.ApprovalRequest, error) {
	if id == "" {
		return nil, errors.InvalidInput("approvalId", "Approval ID cannot be null")
	}
	return s.store.Approvals().Get(ctx, id)
}

// ── Decisions ─────────────────────────────────────────────────────────────────

// Approve applies the request to the catalog and consumes it.
func (s *ApprovalService) Approve(ctx context.Context, approvalID string) (*MutationResult, error) {
	return s.resolve(ctx, approvalID, DecisionApprove)
}

// Reject discards the request. The catalog is not touched, so an item hidden
// by a queued removal stays INACTIVE.
func (s *ApprovalService) Reject(ctx context.Context, approvalID string) (*MutationResult, error) {
	return s.resolve(ctx, approvalID, DecisionReject)
}

// resolve runs one decision as a single unit of work: lock the request, lock
// its target item, write the effect and delete the request. Two concurrent
// decisions on the same request serialise on the first lock; the loser sees
// NOT_FOUND.
func (s *ApprovalService) resolve(ctx context.Context, approvalID string, decision Decision) (*MutationResult, error) {
	if approvalID == "" {
		return nil, errors.InvalidInput("approvalId", "Approval ID cannot be null")
	}

	var (
		req    *repository.ApprovalRequest
		effect Effect
	)
	err := s.store.InTransaction(ctx, func(tx repository.Store) error {
		var err error
		req, err = tx.Approvals().GetForUpdate(ctx, approvalID)
		if err != nil {
			return err
		}

		var target *repository.Item
		if decision == DecisionApprove && req.ProductID != nil {
			target, err = tx.Items().GetForUpdate(ctx, *req.ProductID)
			if err != nil && !errors.IsNotFound(err) {
				return err
			}
		}

		effect, _, err = Resolve(Pending{Request: req}, decision, target, s.now())
		if err != nil {
			return err
		}

		if effect.Write != nil {
			if err := tx.Items().Save(ctx, effect.Write); err != nil {
				return err
			}
		}
		return tx.Approvals().Delete(ctx, req.ID)
	})
	if err != nil {
		return nil, err
	}

	ev := s.log.Info().
		Str("approval_id", req.ID).
		Str("decision", decision.String()).
		Str("outcome", string(effect.Outcome))
	if effect.Write != nil {
		ev = ev.Str("item_id", effect.Write.ID)
	}
	ev.Msg("Approval request resolved")

	eventType := EventApprovalApproved
	if decision == DecisionReject {
		eventType = EventApprovalRejected
	}
	data := map[string]interface{}{"outcome": string(effect.Outcome)}
	if effect.Write != nil {
		data["item_id"] = effect.Write.ID
	}
	s.publisher.PublishApprovalEvent(ctx, eventType, req, data)

	return &MutationResult{
		Outcome:  effect.Outcome,
		Message:  effect.Outcome.Message(),
		Item:     effect.Write,
		Approval: req,
	}, nil
}
