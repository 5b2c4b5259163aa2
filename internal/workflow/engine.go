// Package workflow sequences the report-generation pipeline:
//
//	fetch data → format → completion → extraction → cache write
//
// One Engine serves all requests; each execution owns its WorkflowContext
// exclusively and moves it pending → processing → completed|failed. There
// are no retries and no rollback: any step error marks the context failed
// and propagates, except the final cache write, which is best-effort.
// Concurrent executions are independent; identical concurrent requests run
// the pipeline twice and produce two distinct reports.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/posinsight/posinsight/internal/cache"
	"github.com/posinsight/posinsight/internal/notify"
	"github.com/posinsight/posinsight/internal/posdata"
	"github.com/posinsight/posinsight/internal/prompts"
	"github.com/posinsight/posinsight/internal/report"
	"github.com/posinsight/posinsight/pkg/models"
)

var tracer = otel.Tracer("posinsight-workflow")

// Completer is the completion dependency. Implementations absorb upstream
// failures into the result's finish reason instead of returning errors.
type Completer interface {
	Complete(ctx context.Context, system string, history []models.ChatMessage, userMessage string) models.LLMResult
}

// Engine executes report workflows.
type Engine struct {
	llm       Completer
	cache     cache.ReportCache
	notifier  *notify.Service
	reportTTL time.Duration

	// generate is the transaction source; swapped in tests.
	generate func(start, end time.Time, count int) []models.Transaction
}

// NewEngine creates a workflow engine backed by the synthetic data source.
func NewEngine(llm Completer, reports cache.ReportCache) *Engine {
	return &Engine{
		llm:       llm,
		cache:     reports,
		reportTTL: cache.DefaultTTL,
		generate:  posdata.GenerateTransactions,
	}
}

// WithNotifier attaches a webhook notifier for report lifecycle events.
func (e *Engine) WithNotifier(n *notify.Service) *Engine {
	e.notifier = n
	return e
}

// WithReportTTL overrides how long generated reports stay cached.
// Non-positive values keep the default.
func (e *Engine) WithReportTTL(ttl time.Duration) *Engine {
	if ttl > 0 {
		e.reportTTL = ttl
	}
	return e
}

// NewReportID mints a report identifier in the service's canonical shape:
// a millisecond timestamp plus a short random suffix.
func NewReportID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("report-%d-%s", time.Now().UnixMilli(), suffix)
}

// ExecuteAsync runs the workflow detached from the caller. There is no
// result channel back: completion is observable only through the report
// cache, and a failed run leaves nothing behind. At-most-once,
// fire-and-forget on purpose.
func (e *Engine) ExecuteAsync(reportID string, wf *models.WorkflowContext) {
	go func() {
		ctx := context.Background()
		_, err := e.Execute(ctx, wf, reportID)
		if err != nil {
			log.Error().
				Err(err).
				Str("report_id", reportID).
				Str("report_type", string(wf.ReportType)).
				Msg("Report workflow failed")
		}
		if e.notifier != nil && e.notifier.Enabled() {
			event := notify.NewEvent(notify.EventReportCompleted, reportID, wf.ReportType, wf.SessionID, "")
			if err != nil {
				event = notify.NewEvent(notify.EventReportFailed, reportID, wf.ReportType, wf.SessionID, err.Error())
			}
			e.notifier.Dispatch(ctx, event)
		}
	}()
}

// Execute runs the five-step pipeline synchronously. On success the context
// is completed and the cached report returned; on any step error the context
// is failed, the error recorded on it, and the error returned. The cache
// write alone is best-effort: a write failure logs a warning and does not
// fail the workflow.
func (e *Engine) Execute(ctx context.Context, wf *models.WorkflowContext, reportID string) (*models.GeneratedReport, error) {
	ctx, span := tracer.Start(ctx, "workflow.execute")
	span.SetAttributes(
		attribute.String("report.id", reportID),
		attribute.String("report.type", string(wf.ReportType)),
	)
	defer span.End()

	wf.Status = models.WorkflowProcessing
	log.Info().Str("report_type", string(wf.ReportType)).Str("report_id", reportID).Msg("Starting report workflow")

	rep, err := e.run(ctx, wf, reportID)
	if err != nil {
		wf.Status = models.WorkflowFailed
		wf.Error = err.Error()
		return nil, err
	}
	wf.Status = models.WorkflowCompleted
	return rep, nil
}

func (e *Engine) run(ctx context.Context, wf *models.WorkflowContext, reportID string) (*models.GeneratedReport, error) {
	// Step 1: fetch filtered transaction data
	txns := e.fetchTransactions(wf.Filters)
	wf.Data = txns
	wf.CategoryStats = posdata.CategoryBreakdown(txns)
	log.Debug().Int("transactions", len(txns)).Int("categories", len(wf.CategoryStats)).Msg("Fetched POS data")

	// Step 2: format for analysis
	digest := posdata.FormatForAnalysis(txns)

	// Step 3: completion
	result := e.llm.Complete(ctx, prompts.ForReportType(wf.ReportType), nil, buildReportPrompt(wf.ReportType, digest, wf.Filters))
	if !result.Valid() {
		if result.Content == "" {
			return nil, fmt.Errorf("empty response from completion service")
		}
		return nil, fmt.Errorf("completion finished with error: %s", truncate(result.Content, 200))
	}

	// Step 4: extract structure from the response text
	extracted := report.Extract(result.Content)

	summary, ok := extracted.Sections[report.DefaultSection]
	if !ok {
		summary = truncate(result.Content, 500)
	}
	analysis := extracted.Sections["analysis"]
	if analysis == "" {
		analysis = result.Content
	}

	if reportID == "" {
		reportID = NewReportID()
	}
	rep := &models.GeneratedReport{
		ID:          reportID,
		Type:        wf.ReportType,
		GeneratedAt: time.Now().UTC(),
		Data: models.ReportData{
			Summary:         summary,
			Metrics:         extracted.Metrics,
			Analysis:        analysis,
			Recommendations: extracted.Recommendations,
		},
		Filters: wf.Filters,
	}

	// Step 5: cache, best-effort
	if err := e.cache.Put(ctx, rep, e.reportTTL); err != nil {
		log.Warn().Err(err).Str("report_id", rep.ID).Msg("Failed to cache report")
	} else {
		log.Info().Str("report_id", rep.ID).Msg("Report cached")
	}

	return rep, nil
}

// fetchTransactions synthesizes demo data for the filter window and applies
// the request filters: category matches when any line item matches, and the
// transaction total must sit within the optional amount bounds. Longer
// windows yield proportionally more transactions.
func (e *Engine) fetchTransactions(filters models.ReportFilters) []models.Transaction {
	days := int(filters.EndDate.Sub(filters.StartDate).Hours()/24 + 0.999)
	count := days * 15
	if count < 10 {
		count = 10
	}

	txns := e.generate(filters.StartDate, filters.EndDate, count)

	filtered := txns[:0]
	for _, txn := range txns {
		if filters.Category != "" && !anyItemInCategory(txn, filters.Category) {
			continue
		}
		if filters.MinAmount > 0 && txn.Amount < filters.MinAmount {
			continue
		}
		if filters.MaxAmount > 0 && txn.Amount > filters.MaxAmount {
			continue
		}
		filtered = append(filtered, txn)
	}
	return filtered
}

func anyItemInCategory(txn models.Transaction, category string) bool {
	for _, item := range txn.Items {
		if item.Category == category {
			return true
		}
	}
	return false
}

// buildReportPrompt combines the report template, the formatted data, and a
// human-readable rendering of the active filters into one user message.
func buildReportPrompt(rt models.ReportType, digest string, filters models.ReportFilters) string {
	var b strings.Builder
	b.WriteString(prompts.ForReportType(rt))
	b.WriteString("\n\nHere is the POS data to analyze:\n\n")
	b.WriteString(digest)
	b.WriteString("\nApply these filters to your analysis:\n")
	b.WriteString(renderFilters(filters))
	b.WriteString("\nPlease provide a comprehensive analysis with specific numbers and actionable recommendations.")
	return b.String()
}

func renderFilters(f models.ReportFilters) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- startDate: %s\n", f.StartDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "- endDate: %s\n", f.EndDate.Format("2006-01-02"))
	if f.Department != "" {
		fmt.Fprintf(&b, "- department: %s\n", f.Department)
	}
	if f.Category != "" {
		fmt.Fprintf(&b, "- category: %s\n", f.Category)
	}
	if f.PaymentMethod != "" {
		fmt.Fprintf(&b, "- paymentMethod: %s\n", f.PaymentMethod)
	}
	if f.MinAmount > 0 {
		fmt.Fprintf(&b, "- minAmount: %.2f\n", f.MinAmount)
	}
	if f.MaxAmount > 0 {
		fmt.Fprintf(&b, "- maxAmount: %.2f\n", f.MaxAmount)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
