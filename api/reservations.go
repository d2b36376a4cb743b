package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salonware/salonbooking/internal/domain"
	"github.com/salonware/salonbooking/internal/service/payment"
	"github.com/salonware/salonbooking/internal/service/reservation"
)

type ReservationHandler struct {
	reservations reservation.ReservationUseCase
	payments     payment.PaymentUseCase
}

type createReservationRequest struct {
	CustomerID string    `json:"customer_id"`
	StaffID    string    `json:"staff_id"`
	ServiceID  string    `json:"service_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Notes      string    `json:"notes"`
}

type refundRequest struct {
	RefundAmountCents int64 `json:"refund_amount_cents"`
}

type reservationResponse struct {
	ID              string `json:"id"`
	CustomerID      string `json:"customer_id"`
	StaffID         string `json:"staff_id"`
	ServiceID       string `json:"service_id"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Status          string `json:"status"`
	PriceCents      int64  `json:"price_cents"`
	Notes           string `json:"notes,omitempty"`
	ModifiableUntil string `json:"modifiable_until"`
}

type conflictSlotResponse struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type transactionResponse struct {
	ID                string `json:"id"`
	ReservationID     string `json:"reservation_id"`
	Status            string `json:"status"`
	AmountCents       int64  `json:"amount_cents"`
	RefundAmountCents int64  `json:"refund_amount_cents,omitempty"`
	ProviderRef       string `json:"provider_ref,omitempty"`
}

type paymentIntentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
	Status       string `json:"status"`
}

func NewReservationHandler(reservations reservation.ReservationUseCase, payments payment.PaymentUseCase) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, payments: payments}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.DELETE("/:id", h.cancel)
	router.POST("/with-payment", h.createWithPayment)
	router.POST("/payment-intent", h.createWithPaymentIntent)
	router.POST("/:id/refund", h.refund)
}

func (h *ReservationHandler) create(c *gin.Context) {
	input, ok := h.bindCreateInput(c)
	if !ok {
		return
	}

	created, err := h.reservations.Create(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toReservationResponse(created))
}

func (h *ReservationHandler) list(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	reservations, err := h.reservations.ListByDay(c.Request.Context(), day, c.Query("staff_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response := make([]reservationResponse, 0, len(reservations))
	for i := range reservations {
		response = append(response, toReservationResponse(&reservations[i]))
	}
	c.JSON(http.StatusOK, response)
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	cancelled, err := h.reservations.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReservationResponse(cancelled))
}

func (h *ReservationHandler) createWithPayment(c *gin.Context) {
	input, ok := h.bindCreateInput(c)
	if !ok {
		return
	}

	created, tx, err := h.payments.CreateReservationWithPayment(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reservation": toReservationResponse(created),
		"transaction": toTransactionResponse(tx),
	})
}

func (h *ReservationHandler) createWithPaymentIntent(c *gin.Context) {
	input, ok := h.bindCreateInput(c)
	if !ok {
		return
	}

	created, intent, err := h.payments.CreateReservationWithPaymentIntent(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reservation": toReservationResponse(created),
		"payment_intent": paymentIntentResponse{
			ID:           intent.ID,
			ClientSecret: intent.ClientSecret,
			AmountCents:  intent.AmountCents,
			Status:       intent.Status,
		},
	})
}

func (h *ReservationHandler) refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refunded, err := h.payments.CancelReservationWithRefund(c.Request.Context(), c.Param("id"), req.RefundAmountCents)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResponse(refunded))
}

func (h *ReservationHandler) bindCreateInput(c *gin.Context) (reservation.CreateReservationInput, bool) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return reservation.CreateReservationInput{}, false
	}

	return reservation.CreateReservationInput{
		CustomerID: req.CustomerID,
		StaffID:    req.StaffID,
		ServiceID:  req.ServiceID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Notes:      req.Notes,
	}, true
}

func (h *ReservationHandler) writeError(c *gin.Context, err error) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		conflicts := make([]conflictSlotResponse, 0, len(conflictErr.Conflicts))
		for _, slot := range conflictErr.Conflicts {
			conflicts = append(conflicts, conflictSlotResponse{
				ID:        slot.ID,
				StartTime: slot.StartTime.Format(time.RFC3339),
				EndTime:   slot.EndTime.Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error(), "conflicts": conflicts})
		return
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		return
	}

	var paymentErr *domain.PaymentError
	if errors.As(err, &paymentErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": paymentErr.Error()})
		return
	}

	switch {
	case errors.Is(err, domain.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTimeRange), errors.Is(err, domain.ErrNoCompletedPayment):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:              r.ID,
		CustomerID:      r.CustomerID,
		StaffID:         r.StaffID,
		ServiceID:       r.ServiceID,
		StartTime:       r.StartTime.Format(time.RFC3339),
		EndTime:         r.EndTime.Format(time.RFC3339),
		Status:          string(r.Status),
		PriceCents:      r.PriceCents,
		Notes:           r.Notes,
		ModifiableUntil: r.ModifiableUntil.Format(time.RFC3339),
	}
}

func toTransactionResponse(t *domain.PaymentTransaction) transactionResponse {
	return transactionResponse{
		ID:                t.ID,
		ReservationID:     t.ReservationID,
		Status:            string(t.Status),
		AmountCents:       t.AmountCents,
		RefundAmountCents: t.RefundAmountCents,
		ProviderRef:       t.ProviderRef,
	}
}
