package livecall

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

func newWebhookRouter(tracker *Tracker) *chi.Mux {
	h := NewHandler(tracker, logging.Default())
	r := chi.NewRouter()
	r.Post("/webhooks/retell/call-started", h.CallStarted)
	r.Post("/webhooks/retell/transcript-update", h.TranscriptUpdate)
	r.Post("/webhooks/retell/call-ended", h.CallEnded)
	r.Post("/webhooks/chat/interaction", h.ChatInteraction)
	r.Get("/api/livecalls", h.ActiveCalls)
	return r
}

func post(t *testing.T, router http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhookFlow(t *testing.T) {
	notifier := &recordingNotifier{}
	router := newWebhookRouter(newTestTracker(notifier))

	started := `{
		"call_id": "call_w1",
		"call": {"from_number": "+18182121359"},
		"agent": {"agent_name": "Concierge"},
		"metadata": {"customer_name": "Sarah Johnson", "lead_source": "google"}
	}`
	rec := post(t, router, "/webhooks/retell/call-started", started)
	require.Equal(t, http.StatusOK, rec.Code)

	transcript := `{"call_id":"call_w1","transcript":[{"role":"agent","content":"Hello"},{"role":"user","content":"Hi"}]}`
	rec = post(t, router, "/webhooks/retell/transcript-update", transcript)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/livecalls", nil)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, req)
	require.Equal(t, http.StatusOK, listRec.Code)
	var listing struct {
		ActiveCallCount int               `json:"active_call_count"`
		Calls           []ActiveCallEntry `json:"calls"`
	}
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &listing))
	require.Equal(t, 1, listing.ActiveCallCount)
	assert.Equal(t, "call_w1", listing.Calls[0].CallID)
	assert.Equal(t, 2, listing.Calls[0].TranscriptCount)
	assert.Equal(t, "+18182121359", listing.Calls[0].Customer.Phone)

	ended := `{"call_id":"call_w1","call_analysis":{"outcome":"resolved"}}`
	rec = post(t, router, "/webhooks/retell/call-ended", ended)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Len(t, notifier.messages(), 4)
}

func TestTranscriptSingleObjectPayload(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := newTestTracker(notifier)
	router := newWebhookRouter(tracker)

	post(t, router, "/webhooks/retell/call-started", `{"call_id":"call_s"}`)

	body := `{"call_id":"call_s","transcript":{"role":"user","content":"one line"}}`
	rec := post(t, router, "/webhooks/retell/transcript-update", body)
	require.Equal(t, http.StatusOK, rec.Code)

	session, _ := tracker.Sessions().Get("call_s")
	assert.Equal(t, 1, session.TranscriptCount)
}

func TestWebhooksSucceedWhenChatIsDown(t *testing.T) {
	tracker := newTestTracker(failingNotifier{})
	router := newWebhookRouter(tracker)

	rec := post(t, router, "/webhooks/retell/call-started", `{"call_id":"call_down"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	transcript := `{"call_id":"call_down","transcript":[{"role":"agent","content":"Hello"}]}`
	rec = post(t, router, "/webhooks/retell/transcript-update", transcript)
	require.Equal(t, http.StatusOK, rec.Code)

	session, ok := tracker.Sessions().Get("call_down")
	require.True(t, ok)
	assert.Equal(t, 1, session.TranscriptCount)

	rec = post(t, router, "/webhooks/retell/call-ended", `{"call_id":"call_down"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookMissingCallID(t *testing.T) {
	router := newWebhookRouter(newTestTracker(nil))

	assert.Equal(t, http.StatusBadRequest, post(t, router, "/webhooks/retell/call-started", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, router, "/webhooks/retell/transcript-update", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, router, "/webhooks/retell/call-ended", `{}`).Code)
}

func TestChatInteractionTakeover(t *testing.T) {
	notifier := &recordingNotifier{}
	router := newWebhookRouter(newTestTracker(notifier))

	post(t, router, "/webhooks/retell/call-started", `{"call_id":"call_i"}`)

	interaction := `{
		"action": {"actionMethodName": "requestCallTakeover"},
		"parameters": [{"key": "call_id", "value": "call_i"}],
		"user": {"displayName": "Dana Reyes"}
	}`
	rec := post(t, router, "/webhooks/chat/interaction", interaction)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Takeover requested by Dana Reyes")

	// Same click after the call has ended.
	post(t, router, "/webhooks/retell/call-ended", `{"call_id":"call_i"}`)
	rec = post(t, router, "/webhooks/chat/interaction", interaction)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already ended")
}

func TestChatInteractionUnknownAction(t *testing.T) {
	router := newWebhookRouter(newTestTracker(nil))

	rec := post(t, router, "/webhooks/chat/interaction", `{"action":{"actionMethodName":"somethingElse"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Action received")
}

func TestWebhookNotifierThreading(t *testing.T) {
	var gotPath string
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("threadKey")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL+"/v1/spaces/X/messages?key=abc&token=def", server.Client(), logging.Default())
	err := notifier.Send(context.Background(), "call-123", &Message{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "/v1/spaces/X/messages", gotPath)
	assert.Equal(t, "call-123", gotQuery)
}
