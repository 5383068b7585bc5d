package repository

import "context"

// ItemStore persists catalog items.
type ItemStore interface {
	// Get returns the item or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Item, error)
	// GetForUpdate is Get that also locks the row until the surrounding
	// transaction ends. Outside a transaction it behaves like Get.
	GetForUpdate(ctx context.Context, id string) (*Item, error)
	// Save inserts the item when its ID is empty, assigning one, and
	// overwrites the stored row otherwise.
	Save(ctx context.Context, item *Item) error
	// ListActive returns ACTIVE items ordered by posted date, newest first.
	ListActive(ctx context.Context) ([]*Item, error)
	// Search returns ACTIVE items matching the criteria, newest first.
	Search(ctx context.Context, criteria SearchCriteria) ([]*Item, error)
}

// ApprovalStore persists pending approval requests.
type ApprovalStore interface {
	Get(ctx context.Context, id string) (*ApprovalRequest, error)
	GetForUpdate(ctx context.Context, id string) (*ApprovalRequest, error)
	// Create inserts the request and assigns its ID.
	Create(ctx context.Context, req *ApprovalRequest) error
	// Delete removes the request; a missing request yields NOT_FOUND.
	Delete(ctx context.Context, id string) error
	// ListPending returns every request ordered by request date, oldest first.
	ListPending(ctx context.Context) ([]*ApprovalRequest, error)
}

// Store groups both stores behind one unit of work.
type Store interface {
	Items() ItemStore
	Approvals() ApprovalStore
	// InTransaction runs fn against a transactional view of the store. Writes
	// made through tx are committed only when fn returns nil.
	InTransaction(ctx context.Context, fn func(tx Store) error) error
}
