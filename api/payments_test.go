package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salonware/salonbooking/internal/domain"
	"github.com/salonware/salonbooking/internal/service/reservation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPaymentUseCase is a mock implementation of payment.PaymentUseCase
type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) CreateReservationWithPayment(ctx context.Context, input reservation.CreateReservationInput) (*domain.Reservation, *domain.PaymentTransaction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Reservation), args.Get(1).(*domain.PaymentTransaction), args.Error(2)
}

func (m *MockPaymentUseCase) CreateReservationWithPaymentIntent(ctx context.Context, input reservation.CreateReservationInput) (*domain.Reservation, *domain.PaymentIntent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Reservation), args.Get(1).(*domain.PaymentIntent), args.Error(2)
}

func (m *MockPaymentUseCase) CancelReservationWithRefund(ctx context.Context, reservationID string, refundAmountCents int64) (*domain.PaymentTransaction, error) {
	args := m.Called(ctx, reservationID, refundAmountCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentTransaction), args.Error(1)
}

func TestReservationHandler_createWithPayment(t *testing.T) {
	mockPayments := &MockPaymentUseCase{}
	handler := NewReservationHandler(&MockReservationUseCase{}, mockPayments)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createReservationRequest{
		CustomerID: "cust-1",
		StaffID:    "staff-1",
		ServiceID:  "svc-1",
		StartTime:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC),
	})
	c.Request = httptest.NewRequest("POST", "/reservations/with-payment", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	tx := &domain.PaymentTransaction{
		ID:            "tx-1",
		ReservationID: "res-1",
		Status:        domain.PaymentStatusCompleted,
		AmountCents:   8500,
		ProviderRef:   "ch_123",
	}
	mockPayments.On("CreateReservationWithPayment", c.Request.Context(), mock.Anything).
		Return(sampleReservation(), tx, nil)

	handler.createWithPayment(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Reservation reservationResponse `json:"reservation"`
		Transaction transactionResponse `json:"transaction"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "res-1", response.Reservation.ID)
	assert.Equal(t, string(domain.PaymentStatusCompleted), response.Transaction.Status)

	mockPayments.AssertExpectations(t)
}

func TestReservationHandler_createWithPayment_Declined(t *testing.T) {
	mockPayments := &MockPaymentUseCase{}
	handler := NewReservationHandler(&MockReservationUseCase{}, mockPayments)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createReservationRequest{
		CustomerID: "cust-1",
		StaffID:    "staff-1",
		ServiceID:  "svc-1",
		StartTime:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 1, 15, 11, 0, 0, 0, time.UTC),
	})
	c.Request = httptest.NewRequest("POST", "/reservations/with-payment", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockPayments.On("CreateReservationWithPayment", c.Request.Context(), mock.Anything).
		Return(nil, nil, &domain.PaymentError{Reason: "Card declined"})

	handler.createWithPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Payment failed: Card declined")
}

func TestReservationHandler_refund_NoCompletedPayment(t *testing.T) {
	mockPayments := &MockPaymentUseCase{}
	handler := NewReservationHandler(&MockReservationUseCase{}, mockPayments)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	body, _ := json.Marshal(refundRequest{RefundAmountCents: 4000})
	c.Request = httptest.NewRequest("POST", "/reservations/res-1/refund", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockPayments.On("CancelReservationWithRefund", c.Request.Context(), "res-1", int64(4000)).
		Return(nil, domain.ErrNoCompletedPayment)

	handler.refund(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no completed payment")
}

func TestReservationHandler_refund(t *testing.T) {
	mockPayments := &MockPaymentUseCase{}
	handler := NewReservationHandler(&MockReservationUseCase{}, mockPayments)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "res-1"}}
	body, _ := json.Marshal(refundRequest{RefundAmountCents: 4000})
	c.Request = httptest.NewRequest("POST", "/reservations/res-1/refund", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	refunded := &domain.PaymentTransaction{
		ID:                "tx-1",
		ReservationID:     "res-1",
		Status:            domain.PaymentStatusRefunded,
		AmountCents:       8500,
		RefundAmountCents: 4000,
		ProviderRef:       "ch_123",
	}
	mockPayments.On("CancelReservationWithRefund", c.Request.Context(), "res-1", int64(4000)).
		Return(refunded, nil)

	handler.refund(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response transactionResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.PaymentStatusRefunded), response.Status)
	assert.Equal(t, int64(4000), response.RefundAmountCents)
}
