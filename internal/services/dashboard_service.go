// Package services orchestrates ingestion and analytics into the
// response shapes the HTTP layer renders. The services own the session
// table; everything below them is pure computation.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"costlens/internal/analytics"
	"costlens/internal/dataset"
	"costlens/internal/infrastructure"
	"costlens/internal/ingest"
)

// DatasetInfo describes the currently installed dataset.
type DatasetInfo struct {
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns"`
	LoadedAt time.Time `json:"loaded_at"`
	Warning  string    `json:"warning,omitempty"`
}

// TablePayload is the wire shape of a table: column names plus rows of
// JSON-friendly cells (null cells render as JSON null).
type TablePayload struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Total   int      `json:"total_rows"`
}

// SummaryPayload carries the dashboard's aggregated metrics. Pointer
// fields are nil when the backing column is absent or the value is
// undefined; the frontend renders those as "n/a", never as zero.
type SummaryPayload struct {
	RowCount       int                     `json:"row_count"`
	TotalCost      *float64                `json:"total_cost"`
	MeanUsage      *float64                `json:"mean_usage"`
	CostByProvider []analytics.GroupTotal  `json:"cost_by_provider,omitempty"`
	CostByResource []analytics.GroupTotal  `json:"cost_by_resource,omitempty"`
	DailyCost      []analytics.GroupTotal  `json:"daily_cost,omitempty"`
	TopCostDrivers []analytics.GroupTotal  `json:"top_cost_drivers,omitempty"`
}

// ClientReportPayload is the per-client view: totals, the
// underutilized-resource table and histogram-ready cost-per-hour values.
type ClientReportPayload struct {
	Client        string        `json:"client"`
	RowCount      int           `json:"row_count"`
	TotalCost     *float64      `json:"total_cost"`
	MeanUsage     *float64      `json:"mean_usage"`
	Underutilized *TablePayload `json:"underutilized,omitempty"`
	CostPerHour   []float64     `json:"cost_per_hour,omitempty"`
}

// DashboardService holds the session's record table and answers every
// dashboard query against it. The table is immutable once installed;
// the lock only guards the pointer swap on upload.
type DashboardService struct {
	loader   *ingest.CachedLoader
	logger   *slog.Logger
	metrics  *infrastructure.DashboardMetrics
	underCfg analytics.UnderutilizedConfig

	mu       sync.RWMutex
	table    *dataset.Table
	source   string
	loadedAt time.Time
	warning  string
}

// NewDashboardService creates the service. metrics may be nil (tests).
func NewDashboardService(loader *ingest.CachedLoader, underCfg analytics.UnderutilizedConfig, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		loader:   loader,
		logger:   logger.With(slog.String("component", "dashboard_service")),
		metrics:  metrics,
		underCfg: underCfg,
	}
}

// LoadDataset decodes the upload and installs it as the session table.
// An unrecognized format installs an empty table and reports a warning
// in the returned info; the dashboard keeps working either way.
func (s *DashboardService) LoadDataset(ctx context.Context, data []byte, nameHint string) (*DatasetInfo, error) {
	start := time.Now()
	t, err := s.loader.Load(data, nameHint)
	warning := ""
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		warning = fmt.Sprintf("unsupported file format: %s", nameHint)
	case err != nil:
		s.metrics.RecordLoad(ctx, false, time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrDatasetDecode, err)
	}
	s.metrics.RecordLoad(ctx, warning == "", time.Since(start))

	s.mu.Lock()
	s.table = t
	s.source = nameHint
	s.loadedAt = time.Now()
	s.warning = warning
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset installed",
		slog.String("source", nameHint),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()),
		slog.Bool("unsupported", warning != ""))

	return s.info(), nil
}

// EnsureDefault installs the bundled dataset when nothing has been
// uploaded yet. Called once at startup; a missing bundle is non-fatal.
func (s *DashboardService) EnsureDefault(ctx context.Context, path string) error {
	s.mu.RLock()
	loaded := s.table != nil
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	t, err := s.loader.LoadFile(path)
	if err != nil {
		s.logger.WarnContext(ctx, "default dataset unavailable",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return err
	}

	s.mu.Lock()
	s.table = t
	s.source = path
	s.loadedAt = time.Now()
	s.warning = ""
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "default dataset installed",
		slog.String("path", path),
		slog.Int("rows", t.NumRows()))
	return nil
}

// DatasetInfo returns metadata for the installed dataset.
func (s *DashboardService) DatasetInfo(ctx context.Context) (*DatasetInfo, error) {
	if _, err := s.current(); err != nil {
		return nil, err
	}
	return s.info(), nil
}

// Preview returns the first limit rows of the unfiltered table.
func (s *DashboardService) Preview(ctx context.Context, limit int) (*TablePayload, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	return tablePayload(t.Head(limit), t.NumRows()), nil
}

// Summary recomputes the aggregated dashboard metrics for the given
// constraints. Every aggregate gated on an absent column is skipped,
// not errored.
func (s *DashboardService) Summary(ctx context.Context, c analytics.Constraints) (*SummaryPayload, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	filtered := analytics.Filter(t, c)
	s.metrics.RecordRecompute(ctx)

	return s.summarize(filtered), nil
}

// FilteredRows returns the constrained table for the data tab.
func (s *DashboardService) FilteredRows(ctx context.Context, c analytics.Constraints) (*TablePayload, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	filtered := analytics.Filter(t, c)
	s.metrics.RecordRecompute(ctx)
	return tablePayload(filtered, filtered.NumRows()), nil
}

// SearchClients matches the distinct client list against the query. A
// dataset without a Client column yields an empty list, not an error.
func (s *DashboardService) SearchClients(ctx context.Context, query string) ([]string, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	names := analytics.SearchClients(analytics.ClientNames(t), query)
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// ClientReport computes the per-client view under the given
// constraints. A client with zero matching rows returns
// ErrNoDataForClient, which the transport surfaces as an informational
// "no data" rather than a failure.
func (s *DashboardService) ClientReport(ctx context.Context, client string, c analytics.Constraints) (*ClientReportPayload, error) {
	t, err := s.current()
	if err != nil {
		return nil, err
	}
	if !t.Has(dataset.ColClient) {
		return nil, ErrNoClientColumn
	}

	c.Client = client
	filtered := analytics.Filter(t, c)
	s.metrics.RecordRecompute(ctx)
	if filtered.NumRows() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDataForClient, client)
	}

	report := &ClientReportPayload{
		Client:    client,
		RowCount:  filtered.NumRows(),
		TotalCost: optional(analytics.Sum(filtered, dataset.ColCostUSD)),
		MeanUsage: optional(analytics.Mean(filtered, dataset.ColUsageHours)),
	}
	if under, err := analytics.Underutilized(filtered, s.underCfg); err == nil {
		report.Underutilized = tablePayload(under, under.NumRows())
	}
	if values, err := analytics.NumericValues(filtered, dataset.ColCostPerHour); err == nil {
		report.CostPerHour = values
	}
	return report, nil
}

// current returns the installed table or ErrNoDataset.
func (s *DashboardService) current() (*dataset.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, ErrNoDataset
	}
	return s.table, nil
}

func (s *DashboardService) info() *DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &DatasetInfo{
		Source:   s.source,
		Rows:     s.table.NumRows(),
		Columns:  s.table.ColumnNames(),
		LoadedAt: s.loadedAt,
		Warning:  s.warning,
	}
}

func (s *DashboardService) summarize(t *dataset.Table) *SummaryPayload {
	summary := &SummaryPayload{
		RowCount:  t.NumRows(),
		TotalCost: optional(analytics.Sum(t, dataset.ColCostUSD)),
		MeanUsage: optional(analytics.Mean(t, dataset.ColUsageHours)),
	}
	if g, err := analytics.GroupSum(t, dataset.ColCloudProvider, dataset.ColCostUSD); err == nil {
		summary.CostByProvider = g
	}
	if g, err := analytics.GroupSum(t, dataset.ColResourceType, dataset.ColCostUSD); err == nil {
		summary.CostByResource = g
	}
	if g, err := analytics.GroupSum(t, dataset.ColDate, dataset.ColCostUSD); err == nil {
		// ISO date keys sort lexicographically into chronological order.
		sort.SliceStable(g, func(i, j int) bool { return g[i].Key < g[j].Key })
		summary.DailyCost = g
	}
	if g, err := analytics.TopGroups(t, dataset.ColResourceType, dataset.ColCostUSD, 5); err == nil {
		summary.TopCostDrivers = g
	}
	return summary
}

// optional collapses the aggregate error contract into a nullable
// value: missing column and undefined mean both render as JSON null.
func optional(v float64, err error) *float64 {
	if err != nil {
		return nil
	}
	return &v
}

func tablePayload(t *dataset.Table, total int) *TablePayload {
	return &TablePayload{
		Columns: t.ColumnNames(),
		Rows:    t.Rows(),
		Total:   total,
	}
}
