// Package models defines the shared domain types for the POS Insight service:
// transactions, report requests, generated reports, chat sessions, and the
// uniform API envelope.
package models

import "time"

// ── Transactions ────────────────────────────────────────────

// PaymentMethod is how a transaction was paid for.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
	PaymentCheck  PaymentMethod = "check"
)

// LineItem is a single product line within a transaction.
// TotalPrice is always Quantity × UnitPrice minus any item-level discount.
type LineItem struct {
	SKU        string  `json:"sku"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	Discount   float64 `json:"discount,omitempty"`
}

// Transaction is one point-of-sale transaction.
// Invariant: Amount = sum(item totals) + TaxAmount − DiscountAmount,
// each component rounded to cents.
type Transaction struct {
	ID             string        `json:"id"`
	Timestamp      time.Time     `json:"timestamp"`
	Amount         float64       `json:"amount"`
	TaxAmount      float64       `json:"taxAmount"`
	DiscountAmount float64       `json:"discountAmount"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
	Items          []LineItem    `json:"items"`
	CustomerID     string        `json:"customerId,omitempty"`
	Notes          string        `json:"notes,omitempty"`
}

// Subtotal returns the pre-tax, pre-discount sum of item totals.
func (t Transaction) Subtotal() float64 {
	var sum float64
	for _, item := range t.Items {
		sum += item.TotalPrice
	}
	return sum
}

// ── Reports ─────────────────────────────────────────────────

// ReportType selects the prompt template and framing for a report.
type ReportType string

const (
	ReportDaily                ReportType = "daily"
	ReportWeekly               ReportType = "weekly"
	ReportMonthly              ReportType = "monthly"
	ReportCustom               ReportType = "custom"
	ReportTrendAnalysis        ReportType = "trend-analysis"
	ReportAnomalyDetection     ReportType = "anomaly-detection"
	ReportComparative          ReportType = "comparative"
	ReportCustomerSegmentation ReportType = "customer-segmentation"
	ReportInventory            ReportType = "inventory"
	ReportQuickSummary         ReportType = "quick-summary"
)

// ReportFilters narrows the transaction set a report is built from.
// StartDate and EndDate are required; EndDate must not precede StartDate.
type ReportFilters struct {
	StartDate     time.Time     `json:"startDate"`
	EndDate       time.Time     `json:"endDate"`
	Department    string        `json:"department,omitempty"`
	Category      string        `json:"category,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	MinAmount     float64       `json:"minAmount,omitempty"`
	MaxAmount     float64       `json:"maxAmount,omitempty"`
}

// ReportRequest is an inbound request to generate a report.
type ReportRequest struct {
	ReportType ReportType    `json:"reportType"`
	Filters    ReportFilters `json:"filters"`
	SessionID  string        `json:"sessionId,omitempty"`
	UserID     string        `json:"userId,omitempty"`
}

// WorkflowStatus tracks one report-generation attempt.
type WorkflowStatus string

const (
	WorkflowPending    WorkflowStatus = "pending"
	WorkflowProcessing WorkflowStatus = "processing"
	WorkflowCompleted  WorkflowStatus = "completed"
	WorkflowFailed     WorkflowStatus = "failed"
)

// ItemStats aggregates one SKU inside a category.
type ItemStats struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// CategoryStats aggregates all line items sold in one category.
type CategoryStats struct {
	Revenue      float64              `json:"revenue"`
	Quantity     int                  `json:"quantity"`
	Transactions int                  `json:"transactions"`
	Items        map[string]ItemStats `json:"items"`
}

// WorkflowContext is the mutable state record threaded through one report
// workflow execution. It is owned by exactly one execution and never shared
// across concurrent requests.
type WorkflowContext struct {
	SessionID     string                   `json:"sessionId"`
	UserID        string                   `json:"userId,omitempty"`
	ReportType    ReportType               `json:"reportType"`
	Filters       ReportFilters            `json:"filters"`
	Data          []Transaction            `json:"data,omitempty"`
	CategoryStats map[string]CategoryStats `json:"categoryStats,omitempty"`
	Status        WorkflowStatus           `json:"status"`
	Error         string                   `json:"error,omitempty"`
}

// ReportData is the structured body of a generated report.
type ReportData struct {
	Summary         string            `json:"summary"`
	Metrics         map[string]string `json:"metrics"`
	Analysis        string            `json:"analysis"`
	Recommendations []string          `json:"recommendations"`
}

// GeneratedReport is the finalized, immutable output of a report workflow.
// Cached by ID with a 7-day expiry.
type GeneratedReport struct {
	ID          string        `json:"id"`
	Type        ReportType    `json:"type"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Data        ReportData    `json:"data"`
	Filters     ReportFilters `json:"filters"`
}

// ── Chat & Sessions ─────────────────────────────────────────

// ChatRole identifies who authored a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn in a conversation. Append-only within a session.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId"`
}

// SessionMetadata enumerates the known session metadata keys, plus a narrow
// extension map for anything callers attach beyond them.
type SessionMetadata struct {
	ReportCount    int               `json:"reportCount"`
	LastReportType ReportType        `json:"lastReportType,omitempty"`
	Preferences    map[string]string `json:"preferences,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// ChatSession is a bounded, persisted conversation thread. Messages are
// capped at the most recent 50; older entries are evicted FIFO on insert.
type ChatSession struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Messages     []ChatMessage   `json:"messages"`
	CreatedAt    time.Time       `json:"createdAt"`
	LastActivity time.Time       `json:"lastActivity"`
	Metadata     SessionMetadata `json:"metadata"`
}

// ── LLM ─────────────────────────────────────────────────────

// Message is a role-tagged entry in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TokenUsage reports token counts for one completion call.
type TokenUsage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
}

// FinishError is the distinguished finish reason for calls that failed
// upstream. Consumers treat every completion call as producing text; an
// "error" finish reason is the only failure signal.
const FinishError = "error"

// LLMResult is the outcome of a completion call. Calls never fail with a Go
// error — upstream failures are absorbed into Content + FinishReason.
type LLMResult struct {
	Content      string     `json:"content"`
	Model        string     `json:"model"`
	FinishReason string     `json:"finishReason"`
	Usage        TokenUsage `json:"usage,omitempty"`
}

// Valid reports whether the result carries usable content.
func (r LLMResult) Valid() bool {
	return r.Content != "" && r.FinishReason != FinishError
}

// ── API envelope ────────────────────────────────────────────

// APIResponse is the uniform response envelope for every JSON endpoint.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ChatResult is the data block of a successful /api/chat response.
type ChatResult struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
	ReportID  string `json:"reportId,omitempty"`
}

// ReportStatus is the data block of /api/report responses.
type ReportStatus struct {
	ReportID      string           `json:"reportId"`
	Status        string           `json:"status"`
	EstimatedTime int              `json:"estimatedTime,omitempty"`
	Report        *GeneratedReport `json:"report,omitempty"`
}
