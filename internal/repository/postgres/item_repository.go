package postgres

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pesio-ai/be-product-catalog/internal/platform/database"
	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

const (
	tableItems      = "items"
	colName         = "name"
	colPrice        = "price"
	colStatus       = "status"
	colPostedDate   = "posted_date"
	dialectPostgres = "postgres"
)

// ItemRepository handles item data operations
type ItemRepository struct {
	q database.Querier
}

// NewItemRepository creates a new item repository
func NewItemRepository(q database.Querier) *ItemRepository {
	return &ItemRepository{q: q}
}

const itemColumns = `id::text, name, price::text, status, posted_date`

// Get retrieves an item by ID
func (r *ItemRepository) Get(ctx context.Context, id string) (*repository.Item, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate retrieves an item and locks its row for the rest of the transaction
func (r *ItemRepository) GetForUpdate(ctx context.Context, id string) (*repository.Item, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *ItemRepository) get(ctx context.Context, id, suffix string) (*repository.Item, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NotFound("item", id)
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1` + suffix

	item, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("item", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get item")
	}
	return item, nil
}

// Save inserts a new item or overwrites an existing one
func (r *ItemRepository) Save(ctx context.Context, item *repository.Item) error {
	if item.ID == "" {
		query := `
			INSERT INTO items (name, price, status, posted_date)
			VALUES ($1, $2::text::numeric, $3, $4)
			RETURNING id::text
		`
		err := r.q.QueryRow(ctx, query,
			item.Name,
			priceArg(item.Price),
			string(item.Status),
			item.PostedDate,
		).Scan(&item.ID)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to create item")
		}
		return nil
	}

	query := `
		INSERT INTO items (id, name, price, status, posted_date)
		VALUES ($1, $2, $3::text::numeric, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name        = EXCLUDED.name,
		    price       = EXCLUDED.price,
		    status      = EXCLUDED.status,
		    posted_date = EXCLUDED.posted_date
	`
	_, err := r.q.Exec(ctx, query,
		item.ID,
		item.Name,
		priceArg(item.Price),
		string(item.Status),
		item.PostedDate,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to save item")
	}
	return nil
}

// ListActive lists ACTIVE items, newest first
func (r *ItemRepository) ListActive(ctx context.Context) ([]*repository.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE status = $1
		ORDER BY posted_date DESC NULLS LAST
	`
	rows, err := r.q.Query(ctx, query, string(repository.StatusActive))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list active items")
	}
	defer rows.Close()

	return scanItems(rows)
}

// Search runs the any-of search over ACTIVE items
func (r *ItemRepository) Search(ctx context.Context, c repository.SearchCriteria) ([]*repository.Item, error) {
	query, args, err := buildSearchQuery(c)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build search query")
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to search items")
	}
	defer rows.Close()

	return scanItems(rows)
}

func buildSearchQuery(c repository.SearchCriteria) (string, []any, error) {
	var anyOf []exp.Expression

	if c.Name != nil {
		anyOf = append(anyOf, goqu.Func("LOWER", goqu.C(colName)).Eq(goqu.Func("LOWER", *c.Name)))
	}
	if c.HasPriceRange() {
		var bounds []exp.Expression
		if c.MinPrice != nil {
			bounds = append(bounds, goqu.C(colPrice).Gte(numericLiteral(*c.MinPrice)))
		}
		if c.MaxPrice != nil {
			bounds = append(bounds, goqu.C(colPrice).Lte(numericLiteral(*c.MaxPrice)))
		}
		anyOf = append(anyOf, goqu.And(bounds...))
	}
	if c.HasDateRange() {
		var bounds []exp.Expression
		if c.MinPostedDate != nil {
			bounds = append(bounds, goqu.C(colPostedDate).Gte(c.MinPostedDate.UTC()))
		}
		if c.MaxPostedDate != nil {
			bounds = append(bounds, goqu.C(colPostedDate).Lte(c.MaxPostedDate.UTC()))
		}
		anyOf = append(anyOf, goqu.And(bounds...))
	}

	where := []exp.Expression{goqu.C(colStatus).Eq(string(repository.StatusActive))}
	if len(anyOf) > 0 {
		where = append(where, goqu.Or(anyOf...))
	}

	ds := goqu.Dialect(dialectPostgres).
		From(tableItems).
		Prepared(true).
		Select(goqu.L(itemColumns)).
		Where(where...).
		Order(goqu.I(colPostedDate).Desc().NullsLast())

	return ds.ToSQL()
}

func numericLiteral(d decimal.Decimal) exp.LiteralExpression {
	return goqu.L("?::text::numeric", d.String())
}

// ── scan helpers ──────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*repository.Item, error) {
	var (
		item       repository.Item
		price      *string
		status     string
		postedDate *time.Time
	)
	if err := row.Scan(&item.ID, &item.Name, &price, &status, &postedDate); err != nil {
		return nil, err
	}
	p, err := parsePrice(price)
	if err != nil {
		return nil, err
	}
	item.Price = p
	item.Status = repository.ItemStatus(status)
	item.PostedDate = postedDate
	return &item, nil
}

func scanItems(rows pgx.Rows) ([]*repository.Item, error) {
	var items []*repository.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read items")
	}
	return items, nil
}

// priceArg renders a price as text so the statement can cast it to numeric
// without depending on driver numeric encoding.
func priceArg(p decimal.NullDecimal) *string {
	if !p.Valid {
		return nil
	}
	s := p.Decimal.String()
	return &s
}

func parsePrice(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
