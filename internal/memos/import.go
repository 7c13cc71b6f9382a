package memos

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/casablancax/travel-ai-platform/internal/customer"
	"github.com/casablancax/travel-ai-platform/internal/retell"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

const (
	fallbackSummary = "AI CALL SUMMARY NOT AVAILABLE"
	callMemoChannel = "AI"

	// Hard cap on calls fetched per batch import.
	maxBatchLimit = 100
)

// Legacy memo table only accepts word characters, whitespace and periods.
var memoSanitizer = regexp.MustCompile(`[^\w\s.]`)

// CallMemo is a row in the legacy call-history memo table.
type CallMemo struct {
	RIMSID    string `json:"rims_id"`
	Text      string `json:"rims_memos"`
	Channel   string `json:"tm"`
	Timestamp string `json:"dt"` // MM/DD/YYYY HH:MM:SS
}

// HistoryWriter persists legacy call-history memos.
type HistoryWriter interface {
	CreateCallMemo(ctx context.Context, memo *CallMemo) error
}

// CallFetcher is the slice of the voice-agent client the importer needs.
type CallFetcher interface {
	GetCall(ctx context.Context, callID string) (*retell.Call, error)
	ListCalls(ctx context.Context, req retell.ListCallsRequest) ([]retell.Call, error)
}

// CustomerLookup resolves the customer a finished call belongs to.
type CustomerLookup interface {
	FindByCustomerAndCertificate(ctx context.Context, customerID, certificateCode string) (*customer.Record, error)
}

// Importer turns finished voice-agent calls into call-history memos.
type Importer struct {
	calls     CallFetcher
	customers CustomerLookup
	history   HistoryWriter
	logger    *logging.Logger
}

// NewImporter wires up an Importer.
func NewImporter(calls CallFetcher, customers CustomerLookup, history HistoryWriter, logger *logging.Logger) *Importer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Importer{calls: calls, customers: customers, history: history, logger: logger}
}

// ImportResult describes what happened to one call during import.
type ImportResult struct {
	CallID          string `json:"call_id"`
	Status          string `json:"status"` // success, skipped, failed
	Reason          string `json:"reason,omitempty"`
	RIMSID          string `json:"rims_id,omitempty"`
	CustomerID      string `json:"vac_id,omitempty"`
	CertificateCode string `json:"pkg_code2,omitempty"`
	MemoText        string `json:"memo_text,omitempty"`
	Timestamp       string `json:"datetime,omitempty"`
}

var (
	// ErrCallMissingIdentity means the call never collected the customer id
	// and certificate code the agent is supposed to gather.
	ErrCallMissingIdentity = errors.New("vac_id and pkg_code2 must be collected during the call")

	// ErrCustomerMissingRIMSID means the matched record has no legacy id to
	// attach the memo to.
	ErrCustomerMissingRIMSID = errors.New("customer record does not have a RIMS id")
)

// ImportCall fetches one call and writes its summary memo.
func (i *Importer) ImportCall(ctx context.Context, callID string) (*ImportResult, error) {
	call, err := i.calls.GetCall(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("fetch call %s: %w", callID, err)
	}
	return i.importOne(ctx, call)
}

// BatchImportRequest filters which calls a batch import processes.
type BatchImportRequest struct {
	AgentID        string `json:"agent_id"`
	StartTimestamp int64  `json:"start_timestamp"`
	EndTimestamp   int64  `json:"end_timestamp"`
	Limit          int    `json:"limit"`
}

// BatchImportSummary reports the outcome of a batch import.
type BatchImportSummary struct {
	TotalCalls   int            `json:"total_calls"`
	MemosCreated int            `json:"memos_created"`
	MemosFailed  int            `json:"memos_failed"`
	Results      []ImportResult `json:"results"`
}

// ImportBatch lists recent calls and writes a memo for each resolvable one.
// Calls that never collected a customer identity are skipped, not failed.
func (i *Importer) ImportBatch(ctx context.Context, req BatchImportRequest) (*BatchImportSummary, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > maxBatchLimit {
		limit = maxBatchLimit
	}

	calls, err := i.calls.ListCalls(ctx, retell.ListCallsRequest{
		AgentID:        req.AgentID,
		StartTimestamp: req.StartTimestamp,
		EndTimestamp:   req.EndTimestamp,
		Limit:          limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}

	summary := &BatchImportSummary{TotalCalls: len(calls), Results: make([]ImportResult, 0, len(calls))}
	for idx := range calls {
		result, err := i.importOne(ctx, &calls[idx])
		if err != nil {
			switch {
			case errors.Is(err, ErrCallMissingIdentity),
				errors.Is(err, customer.ErrNotFound),
				errors.Is(err, ErrCustomerMissingRIMSID):
				summary.Results = append(summary.Results, ImportResult{
					CallID: calls[idx].CallID,
					Status: "skipped",
					Reason: err.Error(),
				})
			default:
				i.logger.Error("call import failed", "call_id", calls[idx].CallID, "error", err)
				summary.MemosFailed++
				summary.Results = append(summary.Results, ImportResult{
					CallID: calls[idx].CallID,
					Status: "failed",
					Reason: err.Error(),
				})
			}
			continue
		}
		summary.MemosCreated++
		summary.Results = append(summary.Results, *result)
	}
	return summary, nil
}

func (i *Importer) importOne(ctx context.Context, call *retell.Call) (*ImportResult, error) {
	vacID := call.Variable("vac_id")
	certCode := call.Variable("pkg_code2", "certificate")
	if vacID == "" || certCode == "" {
		return nil, ErrCallMissingIdentity
	}

	rec, err := i.customers.FindByCustomerAndCertificate(ctx, vacID, certCode)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.RIMSID) == "" {
		return nil, ErrCustomerMissingRIMSID
	}

	memo := &CallMemo{
		RIMSID:    rec.RIMSID,
		Text:      SanitizeSummary(call.CallAnalysis.CallSummary),
		Channel:   callMemoChannel,
		Timestamp: formatCallTimestamp(call.StartedAt()),
	}
	if err := i.history.CreateCallMemo(ctx, memo); err != nil {
		return nil, err
	}

	i.logger.Info("call memo created",
		"call_id", call.CallID,
		"rims_id", rec.RIMSID,
		"pkg_code2", certCode,
	)
	return &ImportResult{
		CallID:          call.CallID,
		Status:          "success",
		RIMSID:          rec.RIMSID,
		CustomerID:      vacID,
		CertificateCode: certCode,
		MemoText:        memo.Text,
		Timestamp:       memo.Timestamp,
	}, nil
}

// SanitizeSummary strips everything but word characters, whitespace and
// periods from a call summary and uppercases it for the legacy table.
func SanitizeSummary(summary string) string {
	if strings.TrimSpace(summary) == "" {
		return fallbackSummary
	}
	return strings.ToUpper(memoSanitizer.ReplaceAllString(summary, ""))
}

func formatCallTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.Format("01/02/2006 15:04:05")
}
