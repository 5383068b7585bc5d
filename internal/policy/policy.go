// Package policy decides whether a price-sensitive catalog mutation is applied
// immediately or routed through the approval queue. Functions here are pure:
// they inspect the proposal and current state and never touch storage.
package policy

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

// MaxNameLength bounds item names, in characters.
const MaxNameLength = 255

// Config holds the approval thresholds.
type Config struct {
	// ApprovalThreshold: creates priced above it are queued.
	ApprovalThreshold decimal.Decimal
	// MaxPrice: prices above it are rejected outright.
	MaxPrice decimal.Decimal
	// UpdateRatio: updates priced above previous*UpdateRatio are queued.
	UpdateRatio decimal.Decimal
	// EagerApplyOnQueue keeps the catalog-side writes that accompany a queued
	// update (unchanged re-save) and a queued removal (status set INACTIVE
	// before approval). Disable it to defer every catalog write to approval.
	EagerApplyOnQueue bool
}

// DefaultConfig returns the 5000 / 10000 / 0.5 policy with eager writes on.
func DefaultConfig() Config {
	return Config{
		ApprovalThreshold: decimal.NewFromInt(5000),
		MaxPrice:          decimal.NewFromInt(10000),
		UpdateRatio:       decimal.RequireFromString("0.5"),
		EagerApplyOnQueue: true,
	}
}

// ParseConfig builds a Config from decimal strings.
func ParseConfig(threshold, maxPrice, ratio string, eager bool) (Config, error) {
	var (
		cfg = Config{EagerApplyOnQueue: eager}
		err error
	)
	if cfg.ApprovalThreshold, err = decimal.NewFromString(threshold); err != nil {
		return Config{}, fmt.Errorf("approval threshold %q: %w", threshold, err)
	}
	if cfg.MaxPrice, err = decimal.NewFromString(maxPrice); err != nil {
		return Config{}, fmt.Errorf("max price %q: %w", maxPrice, err)
	}
	if cfg.UpdateRatio, err = decimal.NewFromString(ratio); err != nil {
		return Config{}, fmt.Errorf("update ratio %q: %w", ratio, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the thresholds are usable together.
func (c Config) Validate() error {
	if !c.MaxPrice.IsPositive() {
		return fmt.Errorf("max price must be positive")
	}
	if !c.ApprovalThreshold.IsPositive() {
		return fmt.Errorf("approval threshold must be positive")
	}
	if c.ApprovalThreshold.GreaterThan(c.MaxPrice) {
		return fmt.Errorf("approval threshold %s exceeds max price %s", c.ApprovalThreshold, c.MaxPrice)
	}
	if !c.UpdateRatio.IsPositive() {
		return fmt.Errorf("update ratio must be positive")
	}
	return nil
}

// Disposition is the fate of a proposed mutation.
type Disposition int

const (
	ApplyImmediately Disposition = iota
	RouteToApproval
)

func (d Disposition) String() string {
	switch d {
	case ApplyImmediately:
		return "apply_immediately"
	case RouteToApproval:
		return "route_to_approval"
	default:
		return fmt.Sprintf("disposition(%d)", int(d))
	}
}

// Decision is a Disposition with the reason it was reached.
type Decision struct {
	Disposition Disposition
	Reason      string
}

func apply(reason string) Decision { return Decision{Disposition: ApplyImmediately, Reason: reason} }
func route(reason string) Decision { return Decision{Disposition: RouteToApproval, Reason: reason} }

// DecideCreate screens a new item.
func (c Config) DecideCreate(proposed *repository.Item) (Decision, error) {
	if err := validateFields(proposed); err != nil {
		return Decision{}, err
	}
	if !proposed.Price.Valid {
		return apply("no price"), nil
	}

	price := proposed.Price.Decimal
	if err := c.checkPrice(price, "saved"); err != nil {
		return Decision{}, err
	}
	if price.GreaterThan(c.ApprovalThreshold) {
		return route(fmt.Sprintf("price %s above approval threshold %s", price, c.ApprovalThreshold)), nil
	}
	return apply(fmt.Sprintf("price %s within approval threshold %s", price, c.ApprovalThreshold)), nil
}

// DecideUpdate screens a change to an existing item. The proposal is queued
// when its price is strictly greater than previous price * UpdateRatio; an
// existing item without a price has a threshold of zero.
func (c Config) DecideUpdate(existing, proposed *repository.Item) (Decision, error) {
	if err := validateFields(proposed); err != nil {
		return Decision{}, err
	}
	if !proposed.Price.Valid {
		return Decision{}, errors.InvalidInput("price", "price is required when updating a product")
	}

	price := proposed.Price.Decimal
	if err := c.checkPrice(price, "updated"); err != nil {
		return Decision{}, err
	}

	threshold := c.UpdateThreshold(existing)
	if price.GreaterThan(threshold) {
		return route(fmt.Sprintf("price %s above %s of previous price (%s)", price, c.UpdateRatio, threshold)), nil
	}
	return apply(fmt.Sprintf("price %s within %s of previous price (%s)", price, c.UpdateRatio, threshold)), nil
}

// UpdateThreshold is previous price * UpdateRatio.
func (c Config) UpdateThreshold(existing *repository.Item) decimal.Decimal {
	if existing == nil || !existing.Price.Valid {
		return decimal.Zero
	}
	return existing.Price.Decimal.Mul(c.UpdateRatio)
}

// DecideRemove screens a removal. Removals always need approval.
func (c Config) DecideRemove(existing *repository.Item) Decision {
	return route("removal requires approval")
}

func (c Config) checkPrice(price decimal.Decimal, verb string) error {
	if price.GreaterThan(c.MaxPrice) {
		return errors.InvalidInput("price",
			fmt.Sprintf("Product price exceeds %s. Hence not %s.", c.MaxPrice.StringFixed(0), verb))
	}
	if !price.IsPositive() {
		return errors.InvalidInput("price", "price must be greater than 0")
	}
	return nil
}

func validateFields(item *repository.Item) error {
	if item == nil || strings.TrimSpace(item.Name) == "" {
		return errors.InvalidInput("name", "Product name cannot be null")
	}
	if utf8.RuneCountInString(item.Name) > MaxNameLength {
		return errors.InvalidInput("name", fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	if !item.Status.Valid() {
		return errors.InvalidInput("status", fmt.Sprintf("unknown status %q", item.Status))
	}
	return nil
}
