package handler

import (
	"context"

	"google.golang.org/grpc"

	"github.com/pesio-ai/be-product-catalog/internal/platform/codec"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
	"github.com/pesio-ai/be-product-catalog/internal/service"
)

// CatalogClient calls catalog.v1.CatalogService over the JSON codec.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

// NewCatalogClient creates a client on an established connection.
func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) invoke(ctx context.Context, method string, in, out interface{}, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *CatalogClient) CreateItem(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*service.MutationResult, error) {
	out := new(service.MutationResult)
	if err := c.invoke(ctx, "CreateItem", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) UpdateItem(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*service.MutationResult, error) {
	out := new(service.MutationResult)
	if err := c.invoke(ctx, "UpdateItem", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) RemoveItem(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*service.MutationResult, error) {
	out := new(service.MutationResult)
	if err := c.invoke(ctx, "RemoveItem", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) GetItem(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*repository.Item, error) {
	out := new(repository.Item)
	if err := c.invoke(ctx, "GetItem", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) ListActiveItems(ctx context.Context, opts ...grpc.CallOption) (*ItemList, error) {
	out := new(ItemList)
	if err := c.invoke(ctx, "ListActiveItems", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) SearchItems(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (*service.SearchResult, error) {
	out := new(service.SearchResult)
	if err := c.invoke(ctx, "SearchItems", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) ListApprovalQueue(ctx context.Context, opts ...grpc.CallOption) (*ApprovalList, error) {
	out := new(ApprovalList)
	if err := c.invoke(ctx, "ListApprovalQueue", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) Approve(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*service.MutationResult, error) {
	out := new(service.MutationResult)
	if err := c.invoke(ctx, "Approve", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) Reject(ctx context.Context, in *IDRequest, opts ...grpc.CallOption) (*service.MutationResult, error) {
	out := new(service.MutationResult)
	if err := c.invoke(ctx, "Reject", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
