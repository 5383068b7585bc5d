package repository

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ── Catalog domain types ─────────────────────────────────────────────────────

// ItemStatus is the lifecycle status of a catalog item.
type ItemStatus string

const (
	StatusActive   ItemStatus = "ACTIVE"
	StatusInactive ItemStatus = "INACTIVE"
)

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// ParseStatus normalises a status string. Empty input yields ACTIVE.
func ParseStatus(s string) (ItemStatus, bool) {
	if strings.TrimSpace(s) == "" {
		return StatusActive, true
	}
	st := ItemStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}

// DefaultApprovalAction is stamped on every new approval request. It is
// informational; a request is pending for as long as it exists.
const DefaultApprovalAction = "PENDING"

// Item is a priced catalog record.
type Item struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Price      decimal.NullDecimal `json:"price"`
	Status     ItemStatus          `json:"status"`
	PostedDate *time.Time          `json:"postedDate,omitempty"`
}

// Clone returns a deep copy.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	if i.PostedDate != nil {
		t := *i.PostedDate
		c.PostedDate = &t
	}
	return &c
}

// ApprovalRequest is a proposed catalog mutation awaiting an operator decision.
// ProductID is nil for requests that originate from a create.
type ApprovalRequest struct {
	ID                  string              `json:"id"`
	Name                string              `json:"name"`
	Price               decimal.NullDecimal `json:"price"`
	Status              ItemStatus          `json:"status"`
	PostedDate          *time.Time          `json:"postedDate,omitempty"`
	ApprovalAction      string              `json:"approvalAction"`
	ApprovalRequestDate time.Time           `json:"approvalRequestDate"`
	ProductID           *string             `json:"productId"`
}

// Clone returns a deep copy.
func (a *ApprovalRequest) Clone() *ApprovalRequest {
	if a == nil {
		return nil
	}
	c := *a
	if a.PostedDate != nil {
		t := *a.PostedDate
		c.PostedDate = &t
	}
	if a.ProductID != nil {
		id := *a.ProductID
		c.ProductID = &id
	}
	return &c
}

// SearchCriteria are the optional filters of a catalog search. A criterion
// matches when any of the present filters match; results are ACTIVE only.
type SearchCriteria struct {
	Name          *string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinPostedDate *time.Time
	MaxPostedDate *time.Time
}

// IsEmpty reports whether no filter is set.
func (c SearchCriteria) IsEmpty() bool {
	return c.Name == nil && c.MinPrice == nil && c.MaxPrice == nil &&
		c.MinPostedDate == nil && c.MaxPostedDate == nil
}

// HasPriceRange reports whether either price bound is set.
func (c SearchCriteria) HasPriceRange() bool { return c.MinPrice != nil || c.MaxPrice != nil }

// HasDateRange reports whether either posted-date bound is set.
func (c SearchCriteria) HasDateRange() bool { return c.MinPostedDate != nil || c.MaxPostedDate != nil }

// Matches evaluates the criteria against an item in memory. Stores that cannot
// push the predicate down use it, and it documents the SQL the others build.
func (c SearchCriteria) Matches(item *Item) bool {
	if item.Status != StatusActive {
		return false
	}
	if c.Name != nil && strings.EqualFold(item.Name, *c.Name) {
		return true
	}
	if c.HasPriceRange() && item.Price.Valid {
		p := item.Price.Decimal
		if (c.MinPrice == nil || p.GreaterThanOrEqual(*c.MinPrice)) &&
			(c.MaxPrice == nil || p.LessThanOrEqual(*c.MaxPrice)) {
			return true
		}
	}
	if c.HasDateRange() && item.PostedDate != nil {
		d := *item.PostedDate
		if (c.MinPostedDate == nil || !d.Before(*c.MinPostedDate)) &&
			(c.MaxPostedDate == nil || !d.After(*c.MaxPostedDate)) {
			return true
		}
	}
	return false
}
