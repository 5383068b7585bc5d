package service

import (
	"fmt"
	"time"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

// Decision is an operator's verdict on a pending request.
type Decision int

const (
	DecisionApprove Decision = iota
	DecisionReject
)

func (d Decision) String() string {
	if d == DecisionApprove {
		return "approve"
	}
	return "reject"
}

// ApprovalState is the state of a single approval request: Pending or Resolved.
type ApprovalState interface {
	approvalState()
}

// Pending wraps a request that still awaits a decision.
type Pending struct {
	Request *repository.ApprovalRequest
}

// Resolved is terminal. The request it came from no longer exists.
type Resolved struct {
	RequestID string
	Decision  Decision
	Outcome   Outcome
}

func (Pending) approvalState()  {}
func (Resolved) approvalState() {}

// Effect is the catalog write a resolution requires. Write is nil when the
// catalog must not change.
type Effect struct {
	Outcome Outcome
	Write   *repository.Item
}

// Resolve applies decision to state. target is the current catalog row the
// request refers to, or nil when the request has no product id or the item is
// gone. Resolve never touches storage.
func Resolve(state ApprovalState, decision Decision, target *repository.Item, now time.Time) (Effect, Resolved, error) {
	pending, ok := state.(Pending)
	if !ok {
		return Effect{}, Resolved{}, errors.New(errors.ErrCodeConflict, "approval request is already resolved")
	}
	req := pending.Request
	if req == nil {
		return Effect{}, Resolved{}, errors.New(errors.ErrCodeInternal, "pending state without a request")
	}

	var effect Effect
	switch decision {
	case DecisionReject:
		effect = Effect{Outcome: OutcomeRejected}

	case DecisionApprove:
		switch {
		case req.ProductID == nil:
			effect = Effect{Outcome: OutcomeApprovedCreated, Write: applyRequest(&repository.Item{}, req, now)}
		case target == nil:
			effect = Effect{Outcome: OutcomeApprovedNoChange}
		default:
			effect = Effect{Outcome: OutcomeApprovedUpdated, Write: applyRequest(target.Clone(), req, now)}
		}

	default:
		return Effect{}, Resolved{}, errors.New(errors.ErrCodeInternal, fmt.Sprintf("unknown decision %d", decision))
	}

	return effect, Resolved{RequestID: req.ID, Decision: decision, Outcome: effect.Outcome}, nil
}

func applyRequest(item *repository.Item, req *repository.ApprovalRequest, now time.Time) *repository.Item {
	item.Name = req.Name
	item.Price = req.Price
	item.Status = req.Status
	item.PostedDate = &now
	return item
}
