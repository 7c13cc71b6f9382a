package memos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casablancax/travel-ai-platform/internal/customer"
	"github.com/casablancax/travel-ai-platform/internal/retell"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

type fakeCallFetcher struct {
	calls map[string]*retell.Call
	list  []retell.Call
}

func (f *fakeCallFetcher) GetCall(ctx context.Context, callID string) (*retell.Call, error) {
	call, ok := f.calls[callID]
	if !ok {
		return nil, assert.AnError
	}
	return call, nil
}

func (f *fakeCallFetcher) ListCalls(ctx context.Context, req retell.ListCallsRequest) ([]retell.Call, error) {
	return f.list, nil
}

type fakeCustomerLookup struct {
	records map[string]*customer.Record // keyed by vac_id
}

func (f *fakeCustomerLookup) FindByCustomerAndCertificate(ctx context.Context, customerID, certificateCode string) (*customer.Record, error) {
	rec, ok := f.records[customerID]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return rec, nil
}

func TestSanitizeSummary(t *testing.T) {
	assert.Equal(t, "CUSTOMER ASKED ABOUT DEPOSITS. WILL CALL BACK.",
		SanitizeSummary("Customer asked about deposits. Will call back!"))
	assert.Equal(t, "PAID 250 OF 500", SanitizeSummary("Paid $250 of $500"))
	assert.Equal(t, "AI CALL SUMMARY NOT AVAILABLE", SanitizeSummary(""))
	assert.Equal(t, "AI CALL SUMMARY NOT AVAILABLE", SanitizeSummary("   "))
}

func newTestCall(id, vacID, cert, summary string) *retell.Call {
	return &retell.Call{
		CallID:         id,
		StartTimestamp: 1756500000000,
		CallAnalysis:   retell.CallAnalysis{CallSummary: summary},
		CustomAnalysisData: map[string]any{
			"vac_id":    vacID,
			"pkg_code2": cert,
		},
	}
}

func TestImportCall(t *testing.T) {
	history := NewInMemoryRepository()
	importer := NewImporter(
		&fakeCallFetcher{calls: map[string]*retell.Call{
			"call_1": newTestCall("call_1", "VAC100", "BEACH123", "Customer confirmed travel date."),
		}},
		&fakeCustomerLookup{records: map[string]*customer.Record{
			"VAC100": {CustomerID: "VAC100", RIMSID: "R-9001", CertificateCode: "BEACH123"},
		}},
		history,
		logging.Default(),
	)

	result, err := importer.ImportCall(context.Background(), "call_1")
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "R-9001", result.RIMSID)
	assert.Equal(t, "CUSTOMER CONFIRMED TRAVEL DATE.", result.MemoText)

	memos := history.CallMemos()
	require.Len(t, memos, 1)
	assert.Equal(t, "R-9001", memos[0].RIMSID)
	assert.Equal(t, "AI", memos[0].Channel)
	assert.NotEmpty(t, memos[0].Timestamp)
}

func TestImportCallMissingIdentity(t *testing.T) {
	history := NewInMemoryRepository()
	importer := NewImporter(
		&fakeCallFetcher{calls: map[string]*retell.Call{
			"call_2": {CallID: "call_2"},
		}},
		&fakeCustomerLookup{},
		history,
		logging.Default(),
	)

	_, err := importer.ImportCall(context.Background(), "call_2")
	assert.ErrorIs(t, err, ErrCallMissingIdentity)
	assert.Empty(t, history.CallMemos())
}

func TestImportCallMissingRIMSID(t *testing.T) {
	importer := NewImporter(
		&fakeCallFetcher{calls: map[string]*retell.Call{
			"call_3": newTestCall("call_3", "VAC200", "SKI555", "summary"),
		}},
		&fakeCustomerLookup{records: map[string]*customer.Record{
			"VAC200": {CustomerID: "VAC200", CertificateCode: "SKI555"},
		}},
		NewInMemoryRepository(),
		logging.Default(),
	)

	_, err := importer.ImportCall(context.Background(), "call_3")
	assert.ErrorIs(t, err, ErrCustomerMissingRIMSID)
}

func TestImportBatchSkipsUnresolvableCalls(t *testing.T) {
	history := NewInMemoryRepository()
	importer := NewImporter(
		&fakeCallFetcher{list: []retell.Call{
			*newTestCall("call_ok", "VAC100", "BEACH123", "All good."),
			{CallID: "call_no_identity"},
			*newTestCall("call_unknown", "VAC999", "E789", "Unknown customer."),
		}},
		&fakeCustomerLookup{records: map[string]*customer.Record{
			"VAC100": {CustomerID: "VAC100", RIMSID: "R-9001"},
		}},
		history,
		logging.Default(),
	)

	summary, err := importer.ImportBatch(context.Background(), BatchImportRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalCalls)
	assert.Equal(t, 1, summary.MemosCreated)
	assert.Equal(t, 0, summary.MemosFailed)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, "success", summary.Results[0].Status)
	assert.Equal(t, "skipped", summary.Results[1].Status)
	assert.Equal(t, "skipped", summary.Results[2].Status)
	assert.Len(t, history.CallMemos(), 1)
}

func TestCreateMemoValidation(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.Create(context.Background(), &CreateMemoRequest{Details: "no type or customer"})
	assert.ErrorIs(t, err, ErrMissingFields)

	memo, err := repo.Create(context.Background(), &CreateMemoRequest{
		Type:       "needs tr assignment",
		Details:    "Travel in 40 days, no rep assigned",
		CustomerID: "VAC100",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, memo.ID)
	assert.Equal(t, "AI Agent", memo.CreatedBy)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, memo.CreatedDate)

	list, err := repo.ListByCustomer(context.Background(), "VAC100")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
