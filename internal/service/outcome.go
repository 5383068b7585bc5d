package service

import "github.com/pesio-ai/be-product-catalog/internal/repository"

// Outcome names the observable result of a catalog operation.
type Outcome string

const (
	OutcomeCreated           Outcome = "created"
	OutcomeQueued            Outcome = "queued"
	OutcomeUpdated           Outcome = "updated"
	OutcomeQueuedForDeletion Outcome = "queued_for_deletion"
	OutcomeApprovedCreated   Outcome = "approved_created"
	OutcomeApprovedUpdated   Outcome = "approved_updated"
	// OutcomeApprovedNoChange: the request targeted an item that no longer
	// exists. The request is consumed and the catalog is left untouched.
	OutcomeApprovedNoChange Outcome = "approved_no_change"
	OutcomeRejected         Outcome = "rejected"
)

var outcomeMessages = map[Outcome]string{
	OutcomeCreated:           "Product Created Successfully",
	OutcomeQueued:            "Product Added To Approval Queue",
	OutcomeUpdated:           "Product Updated Successfully",
	OutcomeQueuedForDeletion: "Product Deleted successfully",
	OutcomeApprovedCreated:   "Product approved successfully and product added",
	OutcomeApprovedUpdated:   "Product approved successfully and product updated",
	OutcomeApprovedNoChange:  "Product approval process completed",
	OutcomeRejected:          "Product Rejected Successfully",
}

// Message returns the user-facing text for the outcome.
func (o Outcome) Message() string {
	if m, ok := outcomeMessages[o]; ok {
		return m
	}
	return string(o)
}

// MutationResult is returned by every write operation. Item is the affected
// catalog row, if any; Approval is the request that was queued or resolved.
type MutationResult struct {
	Outcome  Outcome                     `json:"outcome"`
	Message  string                      `json:"message"`
	Item     *repository.Item            `json:"item,omitempty"`
	Approval *repository.ApprovalRequest `json:"approval,omitempty"`
}

// SearchResult is returned by Search. NoRecords is set when a filtered search
// matched nothing; it is not an error.
type SearchResult struct {
	Items     []*repository.Item `json:"items"`
	NoRecords bool               `json:"noRecords"`
	Message   string             `json:"message,omitempty"`
}

// Approval event types published after a commit.
const (
	EventApprovalQueued   = "approval_queued"
	EventApprovalApproved = "approval_approved"
	EventApprovalRejected = "approval_rejected"
)
