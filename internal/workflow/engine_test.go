package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/posinsight/posinsight/internal/cache"
	"github.com/posinsight/posinsight/pkg/models"
)

type fakeCompleter struct {
	result     models.LLMResult
	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(_ context.Context, system string, _ []models.ChatMessage, userMessage string) models.LLMResult {
	f.lastSystem = system
	f.lastUser = userMessage
	return f.result
}

type fakeCache struct {
	put     []*models.GeneratedReport
	putTTLs []time.Duration
	putErr  error
}

func (f *fakeCache) Put(_ context.Context, report *models.GeneratedReport, ttl time.Duration) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.put = append(f.put, report)
	f.putTTLs = append(f.putTTLs, ttl)
	return nil
}

func (f *fakeCache) Get(_ context.Context, reportID string) (*models.GeneratedReport, error) {
	for _, r := range f.put {
		if r.ID == reportID {
			return r, nil
		}
	}
	return nil, &cache.ErrNotFound{Key: reportID}
}

func (f *fakeCache) Close() error { return nil }

func fixedTransactions(start, end time.Time, count int) []models.Transaction {
	txns := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		category := "Beverages"
		if i%2 == 1 {
			category = "Pastries"
		}
		txns = append(txns, models.Transaction{
			ID:            "TXN-fixed",
			Timestamp:     start,
			Amount:        float64(10 + i),
			PaymentMethod: models.PaymentCard,
			Items: []models.LineItem{{
				SKU: "SKU-001", Name: "Cappuccino", Category: category,
				Quantity: 1, UnitPrice: 4.50, TotalPrice: 4.50,
			}},
		})
	}
	return txns
}

func testEngine(llm Completer, c cache.ReportCache) *Engine {
	e := NewEngine(llm, c)
	e.generate = fixedTransactions
	return e
}

func testContext() *models.WorkflowContext {
	return &models.WorkflowContext{
		ReportType: models.ReportDaily,
		Filters: models.ReportFilters{
			StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
		},
		Status: models.WorkflowPending,
	}
}

const fakeResponse = `Revenue was $1,234.00 across 12 transactions.

## Analysis
Beverages dominated. You should consider expanding the morning menu.`

func TestExecute_Success(t *testing.T) {
	llm := &fakeCompleter{result: models.LLMResult{Content: fakeResponse, FinishReason: "stop"}}
	store := &fakeCache{}
	e := testEngine(llm, store)
	wf := testContext()

	rep, err := e.Execute(context.Background(), wf, "report-42")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if wf.Status != models.WorkflowCompleted {
		t.Errorf("status = %s, want completed", wf.Status)
	}
	if rep.ID != "report-42" {
		t.Errorf("report ID = %q, want the caller-supplied id", rep.ID)
	}
	if rep.Type != models.ReportDaily {
		t.Errorf("report type = %s", rep.Type)
	}
	if !strings.Contains(rep.Data.Summary, "$1,234.00") {
		t.Errorf("summary = %q", rep.Data.Summary)
	}
	if !strings.Contains(rep.Data.Analysis, "Beverages dominated") {
		t.Errorf("analysis = %q", rep.Data.Analysis)
	}
	if rep.Data.Metrics["revenue"] != "$1,234.00" || rep.Data.Metrics["transactions"] != "12" {
		t.Errorf("metrics = %v", rep.Data.Metrics)
	}
	if len(rep.Data.Recommendations) == 0 {
		t.Error("recommendations should be extracted")
	}

	if len(store.put) != 1 || store.put[0].ID != "report-42" {
		t.Errorf("cache writes = %v, want the report under its id", store.put)
	}
	if store.putTTLs[0] != cache.DefaultTTL {
		t.Errorf("cache TTL = %v, want default %v", store.putTTLs[0], cache.DefaultTTL)
	}
	if len(wf.CategoryStats) == 0 {
		t.Error("workflow context should carry the category breakdown")
	}
	for name, cs := range wf.CategoryStats {
		if cs.Revenue <= 0 || cs.Transactions == 0 {
			t.Errorf("category %s stats = %+v", name, cs)
		}
	}
}

func TestExecute_ConfiguredReportTTL(t *testing.T) {
	llm := &fakeCompleter{result: models.LLMResult{Content: fakeResponse}}
	store := &fakeCache{}
	e := testEngine(llm, store).WithReportTTL(48 * time.Hour)

	if _, err := e.Execute(context.Background(), testContext(), "report-1"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if store.putTTLs[0] != 48*time.Hour {
		t.Errorf("cache TTL = %v, want configured 48h", store.putTTLs[0])
	}

	// Non-positive overrides keep whatever is already set.
	if e.WithReportTTL(0).reportTTL != 48*time.Hour {
		t.Errorf("reportTTL = %v after zero override, want 48h", e.reportTTL)
	}
}

func TestExecute_PromptCarriesDataAndFilters(t *testing.T) {
	llm := &fakeCompleter{result: models.LLMResult{Content: fakeResponse}}
	e := testEngine(llm, &fakeCache{})
	wf := testContext()
	wf.Filters.Category = "Beverages"
	wf.Filters.MinAmount = 5

	if _, err := e.Execute(context.Background(), wf, "report-1"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if !strings.Contains(llm.lastUser, "POS Transaction Data for Analysis") {
		t.Error("user prompt should embed the data digest")
	}
	if !strings.Contains(llm.lastUser, "- category: Beverages") {
		t.Error("user prompt should render the category filter")
	}
	if !strings.Contains(llm.lastUser, "- minAmount: 5.00") {
		t.Error("user prompt should render the amount filter")
	}
	if !strings.Contains(llm.lastSystem, "daily sales report") {
		t.Error("system prompt should be the daily template")
	}
}

func TestExecute_EmptyCompletionFails(t *testing.T) {
	llm := &fakeCompleter{result: models.LLMResult{}}
	e := testEngine(llm, &fakeCache{})
	wf := testContext()

	_, err := e.Execute(context.Background(), wf, "report-1")
	if err == nil {
		t.Fatal("Execute() should fail on an empty completion")
	}
	if wf.Status != models.WorkflowFailed {
		t.Errorf("status = %s, want failed", wf.Status)
	}
	if wf.Error == "" {
		t.Error("failed context should record the error")
	}
}

func TestExecute_ErrorFinishFails(t *testing.T) {
	llm := &fakeCompleter{result: models.LLMResult{
		Content:      "Error: Unable to generate response. status 500",
		FinishReason: models.FinishError,
	}}
	store := &fakeCache{}
	e := testEngine(llm, store)
	wf := testContext()

	_, err := e.Execute(context.Background(), wf, "report-1")
	if err == nil {
		t.Fatal("Execute() should fail when the completion finished with an error")
	}
	if wf.Status != models.WorkflowFailed {
		t.Errorf("status = %s, want failed", wf.Status)
	}
	if len(store.put) != 0 {
		t.Error("no report should be cached for an error-finish completion")
	}
}

func TestExecute_CacheFailureIsBestEffort(t *testing.T) {
	llm := &fakeCompleter{result: models.LLMResult{Content: fakeResponse}}
	e := testEngine(llm, &fakeCache{putErr: errors.New("kv unavailable")})
	wf := testContext()

	rep, err := e.Execute(context.Background(), wf, "report-1")
	if err != nil {
		t.Fatalf("Execute() should not fail on a cache write error: %v", err)
	}
	if wf.Status != models.WorkflowCompleted {
		t.Errorf("status = %s, want completed despite cache failure", wf.Status)
	}
	if rep == nil {
		t.Fatal("report should still be returned")
	}
}

func TestExecute_MintsIDWhenEmpty(t *testing.T) {
	llm := &fakeCompleter{result: models.LLMResult{Content: fakeResponse}}
	e := testEngine(llm, &fakeCache{})

	rep, err := e.Execute(context.Background(), testContext(), "")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasPrefix(rep.ID, "report-") || len(rep.ID) <= len("report-") {
		t.Errorf("minted report ID = %q", rep.ID)
	}
}

func TestFetchTransactions_Filters(t *testing.T) {
	e := testEngine(nil, nil)

	filters := models.ReportFilters{
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC),
		Category:  "Beverages",
		MinAmount: 12,
		MaxAmount: 100,
	}
	txns := e.fetchTransactions(filters)

	if len(txns) == 0 {
		t.Fatal("fetchTransactions() returned nothing")
	}
	for _, txn := range txns {
		if txn.Amount < 12 || txn.Amount > 100 {
			t.Errorf("txn amount %.2f outside [12, 100]", txn.Amount)
		}
		found := false
		for _, item := range txn.Items {
			if item.Category == "Beverages" {
				found = true
			}
		}
		if !found {
			t.Errorf("txn %s has no item in the filtered category", txn.ID)
		}
	}
}

func TestFetchTransactions_CountScalesWithWindow(t *testing.T) {
	var gotCount int
	e := &Engine{generate: func(start, end time.Time, count int) []models.Transaction {
		gotCount = count
		return nil
	}}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	e.fetchTransactions(models.ReportFilters{StartDate: start, EndDate: start.AddDate(0, 0, 10)})
	if gotCount != 150 {
		t.Errorf("10-day window generated count = %d, want 150", gotCount)
	}

	e.fetchTransactions(models.ReportFilters{StartDate: start, EndDate: start.Add(time.Minute)})
	if gotCount != 10 {
		t.Errorf("sub-day window generated count = %d, want floor of 10", gotCount)
	}
}

func TestNewReportID_Shape(t *testing.T) {
	id := NewReportID()
	parts := strings.SplitN(id, "-", 3)
	if len(parts) != 3 || parts[0] != "report" {
		t.Fatalf("NewReportID() = %q, want report-<ms>-<suffix>", id)
	}
	if len(parts[2]) != 9 {
		t.Errorf("suffix %q has length %d, want 9", parts[2], len(parts[2]))
	}
	if NewReportID() == id {
		t.Error("consecutive ids should differ")
	}
}

func TestExecuteAsync_CompletesThroughCache(t *testing.T) {
	llm := &fakeCompleter{result: models.LLMResult{Content: fakeResponse}}
	store := cache.NewMemoryCache()
	defer store.Close()
	e := testEngine(llm, store)

	e.ExecuteAsync("report-async", testContext())

	deadline := time.After(2 * time.Second)
	for {
		if rep, err := store.Get(context.Background(), "report-async"); err == nil {
			if rep.ID != "report-async" {
				t.Errorf("cached report ID = %q", rep.ID)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("async execution never cached the report")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
