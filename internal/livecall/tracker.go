package livecall

import (
	"context"
	"fmt"
	"time"

	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

// Tracker owns the live-call session map and drives chat notifications
// for call lifecycle events.
type Tracker struct {
	sessions     *SessionStore
	notifier     Notifier
	dashboardURL string
	logger       *logging.Logger
	now          func() time.Time
}

// NewTracker wires a Tracker. notifier may be nil, in which case the
// tracker still maintains sessions but posts nothing.
func NewTracker(notifier Notifier, dashboardURL string, logger *logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Tracker{
		sessions:     NewSessionStore(),
		notifier:     notifier,
		dashboardURL: dashboardURL,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the time source for tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Sessions exposes the underlying store.
func (t *Tracker) Sessions() *SessionStore {
	return t.sessions
}

// CallStartedEvent describes a connecting call.
type CallStartedEvent struct {
	CallID    string
	Customer  CallerInfo
	Lead      LeadInfo
	AgentName string
}

// OnCallStarted registers the session and posts the alert card. A second
// start event for the same call id keeps the original session untouched.
func (t *Tracker) OnCallStarted(ctx context.Context, event CallStartedEvent) error {
	session := &Session{
		CallID:    event.CallID,
		ThreadKey: ThreadKey(event.CallID),
		Customer:  event.Customer,
		AgentName: event.AgentName,
		StartTime: t.now(),
	}
	if !t.sessions.Put(session) {
		t.logger.Warn("duplicate call-started event ignored", "call_id", event.CallID)
		return nil
	}

	t.logger.Info("call started", "call_id", event.CallID, "phone", event.Customer.Phone)
	t.send(ctx, session.ThreadKey, buildCallAlertCard(session, event.Lead, t.dashboardURL))
	return nil
}

// TranscriptSegment is one utterance from the live transcript.
type TranscriptSegment struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// OnTranscript forwards transcript segments into the call's thread.
// Segments for unknown call ids are dropped with a warning.
func (t *Tracker) OnTranscript(ctx context.Context, callID string, segments []TranscriptSegment) error {
	session, ok := t.sessions.Get(callID)
	if !ok {
		t.logger.Warn("transcript for unknown call", "call_id", callID)
		return nil
	}

	for _, segment := range segments {
		speaker := "customer"
		if segment.Role == "agent" {
			speaker = "agent"
		}
		ts := segment.Timestamp
		if ts.IsZero() {
			ts = t.now()
		}
		t.send(ctx, session.ThreadKey, buildTranscriptMessage(speaker, segment.Content, ts))
		t.sessions.IncrementTranscript(callID)
	}
	return nil
}

// OnCallEnded posts the summary card and drops the session. Events for
// unknown call ids are no-ops.
func (t *Tracker) OnCallEnded(ctx context.Context, callID, outcome string) error {
	session, ok := t.sessions.Remove(callID)
	if !ok {
		t.logger.Warn("call-ended for unknown call", "call_id", callID)
		return nil
	}

	duration := t.now().Sub(session.StartTime)
	t.logger.Info("call ended", "call_id", callID, "duration_s", int(duration.Seconds()), "outcome", outcome)
	t.send(ctx, session.ThreadKey, buildCallEndedCard(session, outcome, duration))
	return nil
}

// OnTakeover announces a takeover request in the call's thread and
// returns the confirmation text for the chat response. A false return
// means the call is no longer active.
func (t *Tracker) OnTakeover(ctx context.Context, callID, userName string) (string, bool) {
	session, ok := t.sessions.Get(callID)
	if !ok {
		return "", false
	}
	if userName == "" {
		userName = "Team Member"
	}

	announcement := &Message{
		Text: fmt.Sprintf("🎧 **%s** has requested to take over the call. Transfer initiated...", userName),
	}
	t.send(ctx, session.ThreadKey, announcement)
	return fmt.Sprintf("✅ Takeover requested by %s. Transferring call...", userName), true
}

// send delivers a chat message best-effort. Delivery failures are logged
// and swallowed so webhook callers never see them.
func (t *Tracker) send(ctx context.Context, threadKey string, msg *Message) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.Send(ctx, threadKey, msg); err != nil {
		t.logger.Error("chat notification failed", "thread_key", threadKey, "error", err)
	}
}
