package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

func TestBuildSearchQuery_NoFilters(t *testing.T) {
	query, args, err := buildSearchQuery(repository.SearchCriteria{})
	require.NoError(t, err)

	assert.Contains(t, query, `"status" = $1`)
	assert.NotContains(t, query, " OR ")
	assert.Contains(t, query, `ORDER BY "posted_date" DESC NULLS LAST`)
	assert.Equal(t, []any{"ACTIVE"}, args)
}

func TestBuildSearchQuery_AllFilters(t *testing.T) {
	name := "Widget"
	minPrice, maxPrice := decimal.NewFromInt(100), decimal.RequireFromString("500.25")
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := buildSearchQuery(repository.SearchCriteria{
		Name:          &name,
		MinPrice:      &minPrice,
		MaxPrice:      &maxPrice,
		MinPostedDate: &from,
		MaxPostedDate: &to,
	})
	require.NoError(t, err)

	assert.Contains(t, query, `LOWER("name") = LOWER($`)
	assert.Contains(t, query, `"price" >= $`)
	assert.Contains(t, query, `::text::numeric`)
	assert.Contains(t, query, `"posted_date" <= $`)
	assert.Contains(t, query, " OR ")
	assert.Equal(t, []any{"ACTIVE", "Widget", "100", "500.25", from, to}, args)
}

func TestBuildSearchQuery_OpenEndedDateRange(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := buildSearchQuery(repository.SearchCriteria{MinPostedDate: &from})
	require.NoError(t, err)

	assert.Contains(t, query, `"posted_date" >= $2`)
	assert.NotContains(t, query, `"posted_date" <=`)
	assert.Len(t, args, 2)
}

func TestPriceConversion(t *testing.T) {
	assert.Nil(t, priceArg(decimal.NullDecimal{}))

	arg := priceArg(decimal.NewNullDecimal(decimal.RequireFromString("6000.50")))
	require.NotNil(t, arg)
	assert.Equal(t, "6000.5", *arg)

	p, err := parsePrice(arg)
	require.NoError(t, err)
	assert.True(t, p.Valid)
	assert.Equal(t, "6000.5", p.Decimal.String())

	p, err = parsePrice(nil)
	require.NoError(t, err)
	assert.False(t, p.Valid)
}
