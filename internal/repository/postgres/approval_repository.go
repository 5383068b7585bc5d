package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pesio-ai/be-product-catalog/internal/platform/database"
	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

// ApprovalRepository manages pending approval requests.
// A request is pending for exactly as long as its row exists.
type ApprovalRepository struct {
	q database.Querier
}

// NewApprovalRepository creates a new ApprovalRepository.
func NewApprovalRepository(q database.Querier) *ApprovalRepository {
	return &ApprovalRepository{q: q}
}

const approvalColumns = `
	id::text, name, price::text, status, posted_date,
	approval_action, approval_request_date, product_id::text
`

// Create inserts a new approval request.
func (r *ApprovalRepository) Create(ctx context.Context, req *repository.ApprovalRequest) error {
	query := `
		INSERT INTO approval_requests
		    (name, price, status, posted_date,
		     approval_action, approval_request_date, product_id)
		VALUES ($1, $2::text::numeric, $3, $4,
		        $5, $6, $7::uuid)
		RETURNING id::text
	`

	err := r.q.QueryRow(ctx, query,
		req.Name,
		priceArg(req.Price),
		string(req.Status),
		req.PostedDate,
		req.ApprovalAction,
		req.ApprovalRequestDate,
		req.ProductID,
	).Scan(&req.ID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create approval request")
	}
	return nil
}

// Get retrieves an approval request by its primary key.
func (r *ApprovalRepository) Get(ctx context.Context, id string) (*repository.ApprovalRequest, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate retrieves an approval request and locks it, so a concurrent
// approve/reject of the same request waits and then observes the deletion.
func (r *ApprovalRepository) GetForUpdate(ctx context.Context, id string) (*repository.ApprovalRequest, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *ApprovalRepository) get(ctx context.Context, id, suffix string) (*repository.ApprovalRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NotFound("approval request", id)
	}

	query := `SELECT ` + approvalColumns + ` FROM approval_requests WHERE id = $1` + suffix

	req, err := scanApproval(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, errors.NotFound("approval request", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to get approval request")
	}
	return req, nil
}

// Delete removes an approval request.
func (r *ApprovalRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NotFound("approval request", id)
	}

	tag, err := r.q.Exec(ctx, `DELETE FROM approval_requests WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete approval request")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("approval request", id)
	}
	return nil
}

// ListPending returns the queue in FIFO order.
func (r *ApprovalRepository) ListPending(ctx context.Context) ([]*repository.ApprovalRequest, error) {
	query := `
		SELECT ` + approvalColumns + `
		FROM approval_requests
		ORDER BY approval_request_date ASC, seq ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list approval queue")
	}
	defer rows.Close()

	var out []*repository.ApprovalRequest
	for rows.Next() {
		req, err := scanApproval(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to scan approval request")
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read approval queue")
	}
	return out, nil
}

// ── scan helper ───────────────────────────────────────────────────────────────

func scanApproval(row rowScanner) (*repository.ApprovalRequest, error) {
	var (
		req        repository.ApprovalRequest
		price      *string
		status     string
		postedDate *time.Time
	)
	err := row.Scan(
		&req.ID,
		&req.Name,
		&price,
		&status,
		&postedDate,
		&req.ApprovalAction,
		&req.ApprovalRequestDate,
		&req.ProductID,
	)
	if err != nil {
		return nil, err
	}

	p, err := parsePrice(price)
	if err != nil {
		return nil, err
	}
	req.Price = p
	req.Status = repository.ItemStatus(status)
	req.PostedDate = postedDate
	return &req, nil
}
