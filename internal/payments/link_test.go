package payments

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casablancax/travel-ai-platform/internal/notify"
	"github.com/casablancax/travel-ai-platform/pkg/logging"
)

func fixedClock() time.Time {
	return time.Date(2025, 4, 2, 14, 30, 0, 0, time.UTC)
}

func TestSendLink(t *testing.T) {
	sms := &notify.StubSMSSender{}
	recorder := NewInMemoryRecorder()
	svc := NewService(sms, recorder, "https://c0abc.caspio.com/dp/pay123/payment", logging.Default()).WithClock(fixedClock)

	result, err := svc.SendLink(context.Background(), &LinkRequest{
		LeadID:       "tb263421",
		Phone:        "415-555-1234",
		CustomerName: "John Smith",
		Email:        "john@example.com",
		Amount:       149,
	})
	require.NoError(t, err)
	assert.Equal(t, "SM_stub_1", result.MessageSID)
	assert.Contains(t, result.PaymentURL, "lead_id=tb263421")
	assert.Contains(t, result.PaymentURL, "name=John+Smith")
	assert.Equal(t, "Payment link sent successfully to +14155551234", result.Result)

	require.Len(t, sms.Messages, 1)
	assert.Equal(t, "+14155551234", sms.Messages[0].To)
	assert.Contains(t, sms.Messages[0].Body, "Hi John Smith!")
	assert.Contains(t, sms.Messages[0].Body, "Amount: $149")
	assert.Contains(t, sms.Messages[0].Body, result.PaymentURL)

	assert.Equal(t, "SM_stub_1", recorder.Sent["tb263421"])
	assert.Equal(t, result.PaymentURL, recorder.LinkFor["tb263421"])
}

func TestSendLinkMissingFields(t *testing.T) {
	svc := NewService(&notify.StubSMSSender{}, nil, "https://pay.example.com", logging.Default())

	_, err := svc.SendLink(context.Background(), &LinkRequest{LeadID: "tb1"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

type failingSMS struct{}

func (failingSMS) SendSMS(ctx context.Context, to, body string) (string, error) {
	return "", errors.New("carrier rejected")
}

func TestSendLinkFailureRecorded(t *testing.T) {
	recorder := NewInMemoryRecorder()
	svc := NewService(failingSMS{}, recorder, "https://pay.example.com", logging.Default()).WithClock(fixedClock)

	_, err := svc.SendLink(context.Background(), &LinkRequest{
		LeadID:       "tb5",
		Phone:        "4155551234",
		CustomerName: "A",
		Email:        "a@b.com",
		Amount:       149,
	})
	require.Error(t, err)
	assert.Contains(t, recorder.Failed["tb5"], "carrier rejected")
	assert.Empty(t, recorder.Sent)
}

func TestSendPaymentSMSHandler(t *testing.T) {
	sms := &notify.StubSMSSender{}
	svc := NewService(sms, NewInMemoryRecorder(), "https://pay.example.com", logging.Default()).WithClock(fixedClock)
	h := NewHandler(svc, logging.Default())

	body := `{"lead_id":"tb263421","phone":"+14155551234","customer_name":"John Smith","email":"john@example.com","amount":149}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/send-payment-sms", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SendPaymentSMS(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), "payment_url")

	req = httptest.NewRequest(http.MethodPost, "/webhooks/send-payment-sms", strings.NewReader(`{"lead_id":"tb1"}`))
	rec = httptest.NewRecorder()
	h.SendPaymentSMS(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendPaymentSMSHandlerFailure(t *testing.T) {
	svc := NewService(failingSMS{}, NewInMemoryRecorder(), "https://pay.example.com", logging.Default())
	h := NewHandler(svc, logging.Default())

	body := `{"lead_id":"tb1","phone":"4155551234","customer_name":"A","email":"a@b.com","amount":149}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/send-payment-sms", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SendPaymentSMS(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "specialist call you back")
}
