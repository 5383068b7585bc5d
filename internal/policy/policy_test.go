package policy_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/policy"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

func item(name, price string) *repository.Item {
	it := &repository.Item{Name: name, Status: repository.StatusActive}
	if price != "" {
		it.Price = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	return it
}

func TestDecideCreate(t *testing.T) {
	cfg := policy.DefaultConfig()

	tests := []struct {
		name    string
		item    *repository.Item
		want    policy.Disposition
		wantErr string
	}{
		{name: "no_price_applies", item: item("Widget", ""), want: policy.ApplyImmediately},
		{name: "low_price_applies", item: item("Widget", "3000"), want: policy.ApplyImmediately},
		{name: "smallest_price_applies", item: item("Widget", "0.01"), want: policy.ApplyImmediately},
		{name: "threshold_inclusive_applies", item: item("Widget", "5000"), want: policy.ApplyImmediately},
		{name: "just_above_threshold_routes", item: item("Widget", "5000.01"), want: policy.RouteToApproval},
		{name: "mid_band_routes", item: item("Widget", "6000"), want: policy.RouteToApproval},
		{name: "max_inclusive_routes", item: item("Widget", "10000"), want: policy.RouteToApproval},
		{name: "above_max_rejected", item: item("Widget", "10000.01"), wantErr: "exceeds"},
		{name: "zero_rejected", item: item("Widget", "0"), wantErr: "greater than 0"},
		{name: "negative_rejected", item: item("Widget", "-5"), wantErr: "greater than 0"},
		{name: "blank_name_rejected", item: item("  ", "10"), wantErr: "name"},
		{name: "long_name_rejected", item: item(strings.Repeat("x", 256), "10"), wantErr: "at most 255"},
		{name: "max_length_name_applies", item: item(strings.Repeat("x", 255), "10"), want: policy.ApplyImmediately},
		{
			name:    "unknown_status_rejected",
			item:    &repository.Item{Name: "Widget", Status: "ARCHIVED"},
			wantErr: "unknown status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.DecideCreate(tt.item)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidInput(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Disposition, got.Reason)
		})
	}
}

func TestDecideUpdate(t *testing.T) {
	cfg := policy.DefaultConfig()

	tests := []struct {
		name     string
		existing *repository.Item
		proposed *repository.Item
		want     policy.Disposition
		wantErr  string
	}{
		{
			name:     "above_half_of_previous_routes",
			existing: item("Widget", "5000"),
			proposed: item("Widget", "9000"),
			want:     policy.RouteToApproval,
		},
		{
			name:     "price_drop_above_half_still_routes",
			existing: item("Widget", "5000"),
			proposed: item("Widget", "2600"),
			want:     policy.RouteToApproval,
		},
		{
			name:     "exactly_half_applies",
			existing: item("Widget", "5000"),
			proposed: item("Widget", "2500"),
			want:     policy.ApplyImmediately,
		},
		{
			name:     "below_half_applies",
			existing: item("Widget", "5000"),
			proposed: item("Widget", "100"),
			want:     policy.ApplyImmediately,
		},
		{
			name:     "unpriced_existing_routes",
			existing: item("Widget", ""),
			proposed: item("Widget", "1"),
			want:     policy.RouteToApproval,
		},
		{
			name:     "above_max_rejected",
			existing: item("Widget", "5000"),
			proposed: item("Widget", "10001"),
			wantErr:  "Hence not updated",
		},
		{
			name:     "missing_price_rejected",
			existing: item("Widget", "5000"),
			proposed: item("Widget", ""),
			wantErr:  "price is required",
		},
		{
			name:     "blank_name_rejected",
			existing: item("Widget", "5000"),
			proposed: item("", "10"),
			wantErr:  "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.DecideUpdate(tt.existing, tt.proposed)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidInput(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Disposition, got.Reason)
		})
	}
}

func TestDecideRemove_AlwaysRoutes(t *testing.T) {
	got := policy.DefaultConfig().DecideRemove(item("Widget", "1"))
	assert.Equal(t, policy.RouteToApproval, got.Disposition)
}

func TestCustomThresholds(t *testing.T) {
	cfg, err := policy.ParseConfig("100", "200", "0.9", false)
	require.NoError(t, err)
	assert.False(t, cfg.EagerApplyOnQueue)

	got, err := cfg.DecideCreate(item("Widget", "150"))
	require.NoError(t, err)
	assert.Equal(t, policy.RouteToApproval, got.Disposition)

	_, err = cfg.DecideCreate(item("Widget", "201"))
	assert.ErrorContains(t, err, "exceeds 200")

	got, err = cfg.DecideUpdate(item("Widget", "100"), item("Widget", "90"))
	require.NoError(t, err)
	assert.Equal(t, policy.ApplyImmediately, got.Disposition)

	assert.True(t, cfg.UpdateThreshold(item("Widget", "100")).Equal(decimal.NewFromInt(90)))
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name                    string
		threshold, max, ratio   string
		wantErr                 string
	}{
		{name: "not_a_number", threshold: "abc", max: "10000", ratio: "0.5", wantErr: "approval threshold"},
		{name: "threshold_above_max", threshold: "20000", max: "10000", ratio: "0.5", wantErr: "exceeds max price"},
		{name: "zero_ratio", threshold: "5000", max: "10000", ratio: "0", wantErr: "update ratio"},
		{name: "negative_max", threshold: "5000", max: "-1", ratio: "0.5", wantErr: "max price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := policy.ParseConfig(tt.threshold, tt.max, tt.ratio, true)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDispositionString(t *testing.T) {
	assert.Equal(t, "apply_immediately", policy.ApplyImmediately.String())
	assert.Equal(t, "route_to_approval", policy.RouteToApproval.String())
}
