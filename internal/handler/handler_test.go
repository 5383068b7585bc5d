package handler_test

import (
	"testing"
	"time"

	"github.com/pesio-ai/be-product-catalog/internal/handler"
	"github.com/pesio-ai/be-product-catalog/internal/platform/logger"
	"github.com/pesio-ai/be-product-catalog/internal/policy"
	"github.com/pesio-ai/be-product-catalog/internal/repository/memory"
	"github.com/pesio-ai/be-product-catalog/internal/service"
)

var fixedNow = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

type services struct {
	catalog   *service.CatalogService
	approvals *service.ApprovalService
}

func newServices(t *testing.T) services {
	t.Helper()
	store := memory.New()
	clock := service.WithClock(func() time.Time { return fixedNow })
	return services{
		catalog:   service.NewCatalogService(store, policy.DefaultConfig(), logger.Nop(), clock),
		approvals: service.NewApprovalService(store, logger.Nop(), clock),
	}
}

func (s services) http() *handler.HTTPHandler {
	return handler.NewHTTPHandler(s.catalog, s.approvals, logger.Nop())
}
