package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
	"github.com/pesio-ai/be-product-catalog/internal/repository/repositorytest"
	"github.com/pesio-ai/be-product-catalog/internal/service"
)

func pendingRequest(productID *string) service.Pending {
	return service.Pending{Request: &repository.ApprovalRequest{
		ID:        "req-1",
		Name:      "Widget",
		Price:     repositorytest.Price("6000"),
		Status:    repository.StatusActive,
		ProductID: productID,
	}}
}

func TestResolve(t *testing.T) {
	target := &repository.Item{ID: "item-1", Name: "Old", Price: repositorytest.Price("10"), Status: repository.StatusActive, PostedDate: repositorytest.At(1)}

	tests := []struct {
		name        string
		productID   *string
		decision    service.Decision
		target      *repository.Item
		wantOutcome service.Outcome
		wantWrite   bool
	}{
		{name: "approve_create", decision: service.DecisionApprove, wantOutcome: service.OutcomeApprovedCreated, wantWrite: true},
		{name: "approve_update", productID: strPtr("item-1"), target: target, decision: service.DecisionApprove, wantOutcome: service.OutcomeApprovedUpdated, wantWrite: true},
		{name: "approve_stale", productID: strPtr("item-1"), decision: service.DecisionApprove, wantOutcome: service.OutcomeApprovedNoChange},
		{name: "reject_create", decision: service.DecisionReject, wantOutcome: service.OutcomeRejected},
		{name: "reject_update", productID: strPtr("item-1"), target: target, decision: service.DecisionReject, wantOutcome: service.OutcomeRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effect, resolved, err := service.Resolve(pendingRequest(tt.productID), tt.decision, tt.target, fixedNow)
			require.NoError(t, err)

			assert.Equal(t, tt.wantOutcome, effect.Outcome)
			assert.Equal(t, tt.wantOutcome, resolved.Outcome)
			assert.Equal(t, "req-1", resolved.RequestID)
			assert.Equal(t, tt.decision, resolved.Decision)

			if !tt.wantWrite {
				assert.Nil(t, effect.Write)
				return
			}
			require.NotNil(t, effect.Write)
			assert.Equal(t, "Widget", effect.Write.Name)
			assert.True(t, effect.Write.PostedDate.Equal(fixedNow))
			if tt.target != nil {
				assert.Equal(t, tt.target.ID, effect.Write.ID)
			} else {
				assert.Empty(t, effect.Write.ID)
			}
		})
	}

	assert.Equal(t, "Old", target.Name, "target is not mutated")
}

func TestResolve_ResolvedStateIsTerminal(t *testing.T) {
	_, _, err := service.Resolve(service.Resolved{RequestID: "req-1"}, service.DecisionApprove, nil, fixedNow)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConflict, errors.CodeOf(err))
}
