package livecall

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

type recordedMessage struct {
	ThreadKey string
	Message   *Message
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []recordedMessage
}

func (n *recordingNotifier) Send(ctx context.Context, threadKey string, msg *Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, recordedMessage{ThreadKey: threadKey, Message: msg})
	return nil
}

func (n *recordingNotifier) messages() []recordedMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recordedMessage(nil), n.sent...)
}

type failingNotifier struct{}

func (failingNotifier) Send(ctx context.Context, threadKey string, msg *Message) error {
	return errors.New("webhook unreachable")
}

func newTestTracker(notifier Notifier) *Tracker {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	elapsed := time.Duration(0)
	tracker := NewTracker(notifier, "https://dash.example.com", logging.Default())
	return tracker.WithClock(func() time.Time {
		elapsed += time.Second
		return base.Add(elapsed)
	})
}

func TestCallLifecycle(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := newTestTracker(notifier)
	ctx := context.Background()

	err := tracker.OnCallStarted(ctx, CallStartedEvent{
		CallID:   "call_abc",
		Customer: CallerInfo{Name: "Sarah Johnson", Phone: "8182121359"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tracker.Sessions().Len())

	session, ok := tracker.Sessions().Get("call_abc")
	require.True(t, ok)
	assert.Equal(t, "call-call_abc", session.ThreadKey)

	err = tracker.OnTranscript(ctx, "call_abc", []TranscriptSegment{
		{Role: "agent", Content: "Hello, how can I help?"},
		{Role: "user", Content: "Checking my deposit status."},
	})
	require.NoError(t, err)

	session, _ = tracker.Sessions().Get("call_abc")
	assert.Equal(t, 2, session.TranscriptCount)

	err = tracker.OnCallEnded(ctx, "call_abc", "resolved")
	require.NoError(t, err)
	assert.Equal(t, 0, tracker.Sessions().Len())

	sent := notifier.messages()
	require.Len(t, sent, 4)
	for _, msg := range sent {
		assert.Equal(t, "call-call_abc", msg.ThreadKey)
	}
	assert.NotEmpty(t, sent[0].Message.CardsV2)
	assert.Contains(t, sent[1].Message.Text, "Agent")
	assert.Contains(t, sent[2].Message.Text, "Customer")
	assert.Equal(t, "call-ended-call_abc", sent[3].Message.CardsV2[0].CardID)
}

func TestDuplicateStartKeepsOriginalSession(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := newTestTracker(notifier)
	ctx := context.Background()

	require.NoError(t, tracker.OnCallStarted(ctx, CallStartedEvent{
		CallID:   "call_dup",
		Customer: CallerInfo{Name: "First"},
	}))
	require.NoError(t, tracker.OnCallStarted(ctx, CallStartedEvent{
		CallID:   "call_dup",
		Customer: CallerInfo{Name: "Second"},
	}))

	assert.Equal(t, 1, tracker.Sessions().Len())
	session, _ := tracker.Sessions().Get("call_dup")
	assert.Equal(t, "First", session.Customer.Name)
	// Only the first start posts an alert.
	assert.Len(t, notifier.messages(), 1)
}

func TestUnknownCallEventsAreNoOps(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := newTestTracker(notifier)
	ctx := context.Background()

	require.NoError(t, tracker.OnTranscript(ctx, "ghost", []TranscriptSegment{{Role: "agent", Content: "hi"}}))
	require.NoError(t, tracker.OnCallEnded(ctx, "ghost", ""))
	assert.Empty(t, notifier.messages())
}

func TestTakeover(t *testing.T) {
	notifier := &recordingNotifier{}
	tracker := newTestTracker(notifier)
	ctx := context.Background()

	require.NoError(t, tracker.OnCallStarted(ctx, CallStartedEvent{CallID: "call_tk"}))

	text, active := tracker.OnTakeover(ctx, "call_tk", "Dana Reyes")
	assert.True(t, active)
	assert.Contains(t, text, "Dana Reyes")

	sent := notifier.messages()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1].Message.Text, "requested to take over")

	_, active = tracker.OnTakeover(ctx, "gone", "Dana Reyes")
	assert.False(t, active)
}

func TestNotificationFailuresAreSwallowed(t *testing.T) {
	tracker := newTestTracker(failingNotifier{})
	ctx := context.Background()

	require.NoError(t, tracker.OnCallStarted(ctx, CallStartedEvent{CallID: "call_down"}))
	assert.Equal(t, 1, tracker.Sessions().Len())

	// Delivery keeps failing; every segment is still counted.
	require.NoError(t, tracker.OnTranscript(ctx, "call_down", []TranscriptSegment{
		{Role: "agent", Content: "Hello"},
		{Role: "user", Content: "Hi"},
	}))
	session, _ := tracker.Sessions().Get("call_down")
	assert.Equal(t, 2, session.TranscriptCount)

	require.NoError(t, tracker.OnCallEnded(ctx, "call_down", "resolved"))
	assert.Equal(t, 0, tracker.Sessions().Len())
}

func TestSnapshotOrdering(t *testing.T) {
	tracker := newTestTracker(nil)
	ctx := context.Background()

	require.NoError(t, tracker.OnCallStarted(ctx, CallStartedEvent{CallID: "first"}))
	require.NoError(t, tracker.OnCallStarted(ctx, CallStartedEvent{CallID: "second"}))

	snapshot := tracker.Sessions().Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "first", snapshot[0].CallID)
	assert.Equal(t, "second", snapshot[1].CallID)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", formatDuration(0))
	assert.Equal(t, "45s", formatDuration(45*time.Second))
	assert.Equal(t, "2m 5s", formatDuration(125*time.Second))
}
