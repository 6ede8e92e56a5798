package http

import (
	"context"

	"costlens/internal/analytics"
	"costlens/internal/services"
)

// DashboardServiceInterface defines the operations the dashboard
// handlers need. Implemented by services.DashboardService; mocked in
// handler tests.
type DashboardServiceInterface interface {
	LoadDataset(ctx context.Context, data []byte, nameHint string) (*services.DatasetInfo, error)
	DatasetInfo(ctx context.Context) (*services.DatasetInfo, error)
	Preview(ctx context.Context, limit int) (*services.TablePayload, error)
	Summary(ctx context.Context, c analytics.Constraints) (*services.SummaryPayload, error)
	FilteredRows(ctx context.Context, c analytics.Constraints) (*services.TablePayload, error)
	SearchClients(ctx context.Context, query string) ([]string, error)
	ClientReport(ctx context.Context, client string, c analytics.Constraints) (*services.ClientReportPayload, error)
}
