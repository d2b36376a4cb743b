package notification

import (
	"context"
	"fmt"

	"github.com/salonware/salonbooking/internal/kafka"
)

// EmailSender delivers reservation confirmations picked up from the
// notifications topic. Actual delivery transport (SMTP, LINE, ...) is an
// external concern; this sender only formats and hands off the message.
type EmailSender struct{}

func NewEmailSender() *EmailSender {
	return &EmailSender{}
}

func (s *EmailSender) SendReservationConfirmation(ctx context.Context, event kafka.ReservationEvent) error {
	fmt.Printf("send confirmation email to %s <%s>: %s with %s at %s on %s %s, total %d (reservation %s)\n",
		event.CustomerName, event.CustomerEmail, event.ServiceName, event.StaffName,
		event.Location, event.ReservationDate, event.ReservationTime,
		event.TotalPriceCents, event.ReservationID)
	return nil
}
