package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/salonware/salonbooking/internal/domain"
)

// StubProvider is a local stand-in for the external payment collaborator.
// It approves every charge and refund; real provider adapters implement the
// same Provider interface.
type StubProvider struct{}

func NewStubProvider() *StubProvider {
	return &StubProvider{}
}

func (p *StubProvider) ProcessPayment(ctx context.Context, input ChargeInput) (*ChargeResult, error) {
	return &ChargeResult{
		Success:     true,
		ProviderRef: fmt.Sprintf("stub-charge-%s", uuid.NewString()),
	}, nil
}

func (p *StubProvider) CreatePaymentIntent(ctx context.Context, input ChargeInput) (*domain.PaymentIntent, error) {
	id := uuid.NewString()
	return &domain.PaymentIntent{
		ID:           fmt.Sprintf("stub-intent-%s", id),
		ClientSecret: fmt.Sprintf("secret-%s", id),
		AmountCents:  input.AmountCents,
		Status:       "requires_confirmation",
	}, nil
}

func (p *StubProvider) RefundPayment(ctx context.Context, providerRef string, amountCents int64) (*RefundResult, error) {
	return &RefundResult{
		Success:           true,
		ProviderRef:       providerRef,
		RefundAmountCents: amountCents,
	}, nil
}

var _ Provider = (*StubProvider)(nil)
