package handler

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
	"github.com/pesio-ai/be-product-catalog/internal/service"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "catalog.v1.CatalogService"

// ── Messages ──────────────────────────────────────────────────────────────────
//
// Messages travel with the "json" codec (see internal/platform/codec).

// ItemRequest carries a create or update.
type ItemRequest struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name"`
	Price  *string `json:"price,omitempty"`
	Status string  `json:"status,omitempty"`
}

// IDRequest names an item or approval request.
type IDRequest struct {
	ID string `json:"id"`
}

// SearchRequest carries the optional search filters. Dates use
// service.TimestampLayout.
type SearchRequest struct {
	ProductName   *string `json:"productName,omitempty"`
	MinPrice      *string `json:"minPrice,omitempty"`
	MaxPrice      *string `json:"maxPrice,omitempty"`
	MinPostedDate *string `json:"minPostedDate,omitempty"`
	MaxPostedDate *string `json:"maxPostedDate,omitempty"`
}

// Empty is the request of parameterless calls.
type Empty struct{}

// ItemList is a list of items.
type ItemList struct {
	Items []*repository.Item `json:"items"`
}

// ApprovalList is the approval queue.
type ApprovalList struct {
	Requests []*repository.ApprovalRequest `json:"requests"`
}

// CatalogServer is the server API of catalog.v1.CatalogService.
type CatalogServer interface {
	CreateItem(context.Context, *ItemRequest) (*service.MutationResult, error)
	UpdateItem(context.Context, *ItemRequest) (*service.MutationResult, error)
	RemoveItem(context.Context, *IDRequest) (*service.MutationResult, error)
	GetItem(context.Context, *IDRequest) (*repository.Item, error)
	ListActiveItems(context.Context, *Empty) (*ItemList, error)
	SearchItems(context.Context, *SearchRequest) (*service.SearchResult, error)
	ListApprovalQueue(context.Context, *Empty) (*ApprovalList, error)
	Approve(context.Context, *IDRequest) (*service.MutationResult, error)
	Reject(context.Context, *IDRequest) (*service.MutationResult, error)
}

// GRPCHandler implements the CatalogService gRPC interface
type GRPCHandler struct {
	catalog   *service.CatalogService
	approvals *service.ApprovalService
	logger    zerolog.Logger
}

// NewGRPCHandler creates a new gRPC handler
func NewGRPCHandler(catalog *service.CatalogService, approvals *service.ApprovalService, logger zerolog.Logger) *GRPCHandler {
	return &GRPCHandler{
		catalog:   catalog,
		approvals: approvals,
		logger:    logger.With().Str("handler", "grpc").Logger(),
	}
}

// Register registers the handler on s.
func (h *GRPCHandler) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&ServiceDesc, h)
}

// CreateItem creates an item or queues it for approval
func (h *GRPCHandler) CreateItem(ctx context.Context, req *ItemRequest) (*service.MutationResult, error) {
	h.logger.Debug().Str("name", req.Name).Msg("gRPC CreateItem called")

	res, err := h.catalog.CreateItem(ctx, service.ItemInput{Name: req.Name, Price: req.Price, Status: req.Status})
	if err != nil {
		return nil, mapErrorToGRPC(err)
	}
	return res, nil
}

// UpdateItem updates an item or queues the change for approval
func (h *GRPCHandler) UpdateItem(ctx context.Context, req *ItemRequest) (*service.MutationResult, error) {
	h.logger.Debug().Str("item_id", req.ID).Msg("gRPC UpdateItem called")

	res, err := h.catalog.UpdateItem(ctx, req.ID, service.ItemInput{Name: req.Name, Price: req.Price, Status: req.Status})
	if err != nil {
		return nil, mapErrorToGRPC(err)
	}
	return res, nil
}

// RemoveItem queues an item for removal
func (h *GRPCHandler) RemoveItem(ctx context.Context, req *IDRequest) (*service.MutationResult, error) {
	res, err := h.catalog.RemoveItem(ctx, req.ID)
	if err != nil {
		return nil, mapErrorToGRPC(err)
	}
	return res, nil
}

// GetItem retrieves an item
func (h *GRPCHandler) GetItem(ctx context.Context, req *IDRequest) (*repository.Item, error) {
	item, err := h.catalog.GetItem(ctx, req.ID)
	if err != nil {
		return nil, mapErrorToGRPC(err)
	}
	return item, nil
}

// ListActiveItems lists ACTIVE items
func (h *GRPCHandler) ListActiveItems(ctx context.Context, _ *Empty) (*ItemList, error) {
	items, err := h.catalog.ListActiveItems(ctx)
	if err != nil {
		return nil, mapErrorToGRPC(err)
	}
	return &ItemList{Items: items}, nil
}

// SearchItems runs a catalog search
func (h *GRPCHandler) SearchItems(ctx context.Context, req *SearchRequest) (*service.SearchResult, error) {
	criteria, err := req.criteria()
	if err != nil {
		return nil, mapErrorToGRPC(err)
	}
	res, err := h.catalog.SearchItems(ctx, criteria)
	if err != nil {
		return nil, mapErrorToGRPC(err)
	}
	return res, nil
}

// ListApprovalQueue lists pending approval requests
func (h *GRPCHandler) ListApprovalQueue(ctx context.Context, _ *Empty) (*ApprovalList, error) {
	reqs, err := h.approvals.ListApprovalQueue(ctx)
	if err != nil {
		return nil, mapErrorToGRPC(err)
	}
	return &ApprovalList{Requests: reqs}, nil
}

// Approve approves a pending request
func (h *GRPCHandler) Approve(ctx context.Context, req *IDRequest) (*service.MutationResult, error) {
	h.logger.Info().Str("approval_id", req.ID).Msg("gRPC Approve called")

	res, err := h.approvals.Approve(ctx, req.ID)
	if err != nil {
		return nil, mapErrorToGRPC(err)
	}
	return res, nil
}

// Reject rejects a pending request
func (h *GRPCHandler) Reject(ctx context.Context, req *IDRequest) (*service.MutationResult, error) {
	h.logger.Info().Str("approval_id", req.ID).Msg("gRPC Reject called")

	res, err := h.approvals.Reject(ctx, req.ID)
	if err != nil {
		return nil, mapErrorToGRPC(err)
	}
	return res, nil
}

func (r *SearchRequest) criteria() (repository.SearchCriteria, error) {
	var c repository.SearchCriteria
	if r.ProductName != nil && *r.ProductName != "" {
		name := *r.ProductName
		c.Name = &name
	}
	if r.MinPrice != nil && *r.MinPrice != "" {
		d, err := service.ParsePrice(*r.MinPrice)
		if err != nil {
			return c, errors.InvalidInput("minPrice", "minPrice must be a decimal number")
		}
		c.MinPrice = &d
	}
	if r.MaxPrice != nil && *r.MaxPrice != "" {
		d, err := service.ParsePrice(*r.MaxPrice)
		if err != nil {
			return c, errors.InvalidInput("maxPrice", "maxPrice must be a decimal number")
		}
		c.MaxPrice = &d
	}
	if r.MinPostedDate != nil && *r.MinPostedDate != "" {
		t, err := service.ParseTimestamp(*r.MinPostedDate)
		if err != nil {
			return c, errors.InvalidInput("minPostedDate", "minPostedDate must be formatted as "+service.TimestampLayout)
		}
		c.MinPostedDate = &t
	}
	if r.MaxPostedDate != nil && *r.MaxPostedDate != "" {
		t, err := service.ParseTimestamp(*r.MaxPostedDate)
		if err != nil {
			return c, errors.InvalidInput("maxPostedDate", "maxPostedDate must be formatted as "+service.TimestampLayout)
		}
		c.MaxPostedDate = &t
	}
	return c, nil
}

// mapErrorToGRPC maps application error codes to gRPC status codes.
func mapErrorToGRPC(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	switch errors.CodeOf(err) {
	case errors.ErrCodeInvalidInput:
		return status.Error(codes.InvalidArgument, msg)
	case errors.ErrCodeNotFound:
		return status.Error(codes.NotFound, msg)
	case errors.ErrCodeConflict:
		return status.Error(codes.FailedPrecondition, msg)
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// ── Service descriptor ────────────────────────────────────────────────────────

// ServiceDesc describes catalog.v1.CatalogService. Payloads use the JSON codec,
// so there is no proto file descriptor and Metadata stays empty.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateItem", CatalogServer.CreateItem),
		unary("UpdateItem", CatalogServer.UpdateItem),
		unary("RemoveItem", CatalogServer.RemoveItem),
		unary("GetItem", CatalogServer.GetItem),
		unary("ListActiveItems", CatalogServer.ListActiveItems),
		unary("SearchItems", CatalogServer.SearchItems),
		unary("ListApprovalQueue", CatalogServer.ListApprovalQueue),
		unary("Approve", CatalogServer.Approve),
		unary("Reject", CatalogServer.Reject),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "",
}

func unary[Req, Resp any](name string, call func(CatalogServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CatalogServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CatalogServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
