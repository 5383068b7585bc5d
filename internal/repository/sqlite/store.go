// Package sqlite is the embedded Store backed by gorm over a pure-Go SQLite
// driver. It serves single-node deployments and local development.
package sqlite

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

type itemModel struct {
	ID         string              `gorm:"primaryKey;type:varchar(36)"`
	Name       string              `gorm:"type:varchar(255);not null"`
	Price      decimal.NullDecimal `gorm:"type:numeric"`
	Status     string              `gorm:"type:varchar(16);not null;index"`
	PostedDate *time.Time          `gorm:"index"`
}

func (itemModel) TableName() string { return "items" }

type approvalModel struct {
	ID                  string              `gorm:"primaryKey;type:varchar(36)"`
	Name                string              `gorm:"type:varchar(255);not null"`
	Price               decimal.NullDecimal `gorm:"type:numeric"`
	Status              string              `gorm:"type:varchar(16);not null"`
	PostedDate          *time.Time
	ApprovalAction      string    `gorm:"type:varchar(32);not null"`
	ApprovalRequestDate time.Time `gorm:"not null;index"`
	ProductID           *string   `gorm:"type:varchar(36);index"`
}

func (approvalModel) TableName() string { return "approval_requests" }

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*gorm.DB, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		dsn = "file:" + strings.TrimPrefix(path, "file:") + "?_pragma=busy_timeout(5000)"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, err
	}

	// One connection: SQLite serialises writers anyway, and an in-memory
	// database only exists on the connection that created it.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&itemModel{}, &approvalModel{})
}

// Store implements repository.Store over gorm.
type Store struct {
	db *gorm.DB
}

// New wraps an opened and migrated database.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Items() repository.ItemStore         { return &itemRepo{db: s.db} }
func (s *Store) Approvals() repository.ApprovalStore { return &approvalRepo{db: s.db} }

func (s *Store) InTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// ── Items ─────────────────────────────────────────────────────────────────────

type itemRepo struct{ db *gorm.DB }

func (r *itemRepo) Get(ctx context.Context, id string) (*repository.Item, error) {
	var m itemModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("item", id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get item")
	}
	return m.toItem(), nil
}

func (r *itemRepo) GetForUpdate(ctx context.Context, id string) (*repository.Item, error) {
	return r.Get(ctx, id)
}

func (r *itemRepo) Save(ctx context.Context, item *repository.Item) error {
	m := itemFrom(item)
	if m.ID == "" {
		m.ID = uuid.NewString()
		if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to create item")
		}
		item.ID = m.ID
		return nil
	}
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to save item")
	}
	return nil
}

func (r *itemRepo) ListActive(ctx context.Context) ([]*repository.Item, error) {
	var rows []itemModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(repository.StatusActive)).
		Order("posted_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list active items")
	}
	return toItems(rows), nil
}

func (r *itemRepo) Search(ctx context.Context, c repository.SearchCriteria) ([]*repository.Item, error) {
	var (
		conds []string
		args  []any
	)
	if c.Name != nil {
		conds = append(conds, "LOWER(name) = LOWER(?)")
		args = append(args, *c.Name)
	}
	if c.HasPriceRange() {
		cond, a := rangeCond("price", c.MinPrice, c.MaxPrice)
		conds = append(conds, cond)
		args = append(args, a...)
	}
	if c.HasDateRange() {
		cond, a := rangeCond("posted_date", utcPtr(c.MinPostedDate), utcPtr(c.MaxPostedDate))
		conds = append(conds, cond)
		args = append(args, a...)
	}

	q := r.db.WithContext(ctx).Where("status = ?", string(repository.StatusActive))
	if len(conds) > 0 {
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	var rows []itemModel
	if err := q.Order("posted_date DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to search items")
	}
	return toItems(rows), nil
}

// rangeCond builds "col >= ? AND col <= ?" for whichever bounds are present.
func rangeCond[T any](col string, lo, hi *T) (string, []any) {
	var parts []string
	var args []any
	if lo != nil {
		parts = append(parts, col+" >= ?")
		args = append(args, *lo)
	}
	if hi != nil {
		parts = append(parts, col+" <= ?")
		args = append(args, *hi)
	}
	return "(" + strings.Join(parts, " AND ") + ")", args
}

// ── Approvals ─────────────────────────────────────────────────────────────────

type approvalRepo struct{ db *gorm.DB }

func (r *approvalRepo) Get(ctx context.Context, id string) (*repository.ApprovalRequest, error) {
	var m approvalModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("approval request", id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get approval request")
	}
	return m.toRequest(), nil
}

func (r *approvalRepo) GetForUpdate(ctx context.Context, id string) (*repository.ApprovalRequest, error) {
	return r.Get(ctx, id)
}

func (r *approvalRepo) Create(ctx context.Context, req *repository.ApprovalRequest) error {
	m := approvalFrom(req)
	m.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create approval request")
	}
	req.ID = m.ID
	return nil
}

func (r *approvalRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&approvalModel{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, errors.ErrCodeInternal, "failed to delete approval request")
	}
	if res.RowsAffected == 0 {
		return errors.NotFound("approval request", id)
	}
	return nil
}

func (r *approvalRepo) ListPending(ctx context.Context) ([]*repository.ApprovalRequest, error) {
	var rows []approvalModel
	if err := r.db.WithContext(ctx).Order("approval_request_date ASC, rowid ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list approval queue")
	}
	out := make([]*repository.ApprovalRequest, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toRequest())
	}
	return out, nil
}

// ── mapping ───────────────────────────────────────────────────────────────────

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func itemFrom(i *repository.Item) itemModel {
	return itemModel{
		ID:         i.ID,
		Name:       i.Name,
		Price:      i.Price,
		Status:     string(i.Status),
		PostedDate: utcPtr(i.PostedDate),
	}
}

func (m *itemModel) toItem() *repository.Item {
	return &repository.Item{
		ID:         m.ID,
		Name:       m.Name,
		Price:      m.Price,
		Status:     repository.ItemStatus(m.Status),
		PostedDate: utcPtr(m.PostedDate),
	}
}

func toItems(rows []itemModel) []*repository.Item {
	out := make([]*repository.Item, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toItem())
	}
	return out
}

func approvalFrom(a *repository.ApprovalRequest) approvalModel {
	return approvalModel{
		ID:                  a.ID,
		Name:                a.Name,
		Price:               a.Price,
		Status:              string(a.Status),
		PostedDate:          utcPtr(a.PostedDate),
		ApprovalAction:      a.ApprovalAction,
		ApprovalRequestDate: a.ApprovalRequestDate.UTC(),
		ProductID:           a.ProductID,
	}
}

func (m *approvalModel) toRequest() *repository.ApprovalRequest {
	return &repository.ApprovalRequest{
		ID:                  m.ID,
		Name:                m.Name,
		Price:               m.Price,
		Status:              repository.ItemStatus(m.Status),
		PostedDate:          utcPtr(m.PostedDate),
		ApprovalAction:      m.ApprovalAction,
		ApprovalRequestDate: m.ApprovalRequestDate.UTC(),
		ProductID:           m.ProductID,
	}
}
