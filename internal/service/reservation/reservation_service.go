package reservation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/salonware/salonbooking/internal/domain"
	"github.com/salonware/salonbooking/internal/kafka"
	"github.com/salonware/salonbooking/internal/repository"
	"golang.org/x/sync/errgroup"
)

type ReservationUseCase interface {
	Validate(ctx context.Context, input CreateReservationInput) (*domain.ValidationResult, error)
	Create(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	ListByDay(ctx context.Context, day time.Time, staffID string) ([]domain.Reservation, error)
	Cancel(ctx context.Context, id string) (*domain.Reservation, error)
	CompleteFinished(ctx context.Context) ([]domain.Reservation, error)
}

type Cache interface {
	AcquireSlotLock(ctx context.Context, staffID string, start time.Time, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, staffID string, start time.Time) error
	GetSchedule(ctx context.Context, staffID string, day time.Time) ([]domain.Reservation, error)
	SetSchedule(ctx context.Context, staffID string, day time.Time, reservations []domain.Reservation) error
	InvalidateSchedule(ctx context.Context, staffID string, day time.Time) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// ConflictPolicy controls behavior when the conflict lookup itself fails.
// FailOpen keeps the historical behavior of assuming availability; FailClosed
// rejects the request instead.
type ConflictPolicy string

const (
	FailOpen   ConflictPolicy = "fail_open"
	FailClosed ConflictPolicy = "fail_closed"
)

type ReservationService struct {
	reservations       repository.ReservationRepository
	customers          repository.CustomerRepository
	staff              repository.StaffRepository
	services           repository.ServiceRepository
	cache              Cache
	producer           Producer
	notificationsTopic string
	slotLockTTL        time.Duration
	modifiableWindow   time.Duration
	conflictPolicy     ConflictPolicy
}

type CreateReservationInput struct {
	CustomerID string    `json:"customer_id"`
	StaffID    string    `json:"staff_id"`
	ServiceID  string    `json:"service_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Notes      string    `json:"notes"`
	// PriceCents overrides the service catalog price when positive.
	PriceCents int64 `json:"price_cents"`
}

type ReservationServiceOption func(*ReservationService)

func WithConflictPolicy(policy ConflictPolicy) ReservationServiceOption {
	return func(s *ReservationService) {
		s.conflictPolicy = policy
	}
}

func WithModifiableWindow(window time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.modifiableWindow = window
	}
}

func NewReservationService(
	reservations repository.ReservationRepository,
	customers repository.CustomerRepository,
	staff repository.StaffRepository,
	services repository.ServiceRepository,
	cache Cache,
	producer Producer,
	notificationsTopic string,
	slotLockTTL time.Duration,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		reservations:       reservations,
		customers:          customers,
		staff:              staff,
		services:           services,
		cache:              cache,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		slotLockTTL:        slotLockTTL,
		modifiableWindow:   24 * time.Hour,
		conflictPolicy:     FailOpen,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Validate checks that the referenced customer and staff exist and that the
// requested window does not overlap an existing blocking reservation.
// Existence errors pre-empt the conflict check: no conflict query runs when
// either party is missing. Read-only and idempotent.
func (s *ReservationService) Validate(ctx context.Context, input CreateReservationInput) (*domain.ValidationResult, error) {
	result, _, _, err := s.validate(ctx, input)
	return result, err
}

func (s *ReservationService) validate(ctx context.Context, input CreateReservationInput) (*domain.ValidationResult, *domain.Customer, *domain.Staff, error) {
	var (
		customer    *domain.Customer
		staffMember *domain.Staff
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.customers.FindByID(gctx, input.CustomerID)
		customer = c
		return err
	})
	g.Go(func() error {
		st, err := s.staff.FindByID(gctx, input.StaffID)
		staffMember = st
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	result := &domain.ValidationResult{Valid: true}
	if customer == nil {
		result.Valid = false
		result.Errors = append(result.Errors, domain.ReasonCustomerNotFound)
	}
	if staffMember == nil {
		result.Valid = false
		result.Errors = append(result.Errors, domain.ReasonStaffNotFound)
	}
	if !result.Valid {
		return result, customer, staffMember, nil
	}

	existing, err := s.reservations.FindConflicts(ctx, input.StaffID, input.StartTime, input.EndTime)
	if err != nil {
		if s.conflictPolicy == FailClosed {
			return nil, nil, nil, err
		}
		// Distinct from a clean "no conflicts" result: the lookup failed and
		// availability is being assumed.
		log.Printf("WARNING: conflict lookup failed for staff %s, assuming slot is free (fail-open): %v", input.StaffID, err)
		existing = nil
	}

	conflicts := filterConflicts(existing, input.StartTime, input.EndTime)
	if len(conflicts) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, domain.ReasonTimeSlotConflict)
		result.Conflicts = conflicts
	}
	return result, customer, staffMember, nil
}

// filterConflicts re-applies the blocking-status and overlap rules in memory,
// trimming matches to the slot view exposed to callers.
func filterConflicts(existing []domain.Reservation, start, end time.Time) []domain.ConflictingSlot {
	var conflicts []domain.ConflictingSlot
	for _, r := range existing {
		if !r.Status.Blocks() {
			continue
		}
		if !domain.Overlaps(r.StartTime, r.EndTime, start, end) {
			continue
		}
		conflicts = append(conflicts, domain.ConflictingSlot{ID: r.ID, StartTime: r.StartTime, EndTime: r.EndTime})
	}
	return conflicts
}

// Create validates and persists a reservation. An invalid reservation is
// never written, even when Create is called directly. The confirmation
// notification is published best-effort after the write: its failure is
// logged and never fails or rolls back the reservation.
func (s *ReservationService) Create(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error) {
	if !input.StartTime.Before(input.EndTime) {
		return nil, domain.ErrInvalidTimeRange
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireSlotLock(ctx, input.StaffID, input.StartTime, s.slotLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &domain.ConflictError{}
		}
		locked = true
	}
	releaseLock := func() {
		if locked {
			_ = s.cache.ReleaseSlotLock(ctx, input.StaffID, input.StartTime)
		}
	}

	result, customer, staffMember, err := s.validate(ctx, input)
	if err != nil {
		releaseLock()
		return nil, err
	}
	if !result.Valid {
		releaseLock()
		if len(result.Conflicts) > 0 {
			return nil, &domain.ConflictError{Conflicts: result.Conflicts}
		}
		return nil, &domain.ValidationError{Reasons: result.Errors}
	}

	svc, err := s.services.FindByID(ctx, input.ServiceID)
	if err != nil {
		releaseLock()
		return nil, err
	}
	if svc == nil {
		releaseLock()
		return nil, &domain.ValidationError{Reasons: []string{domain.ReasonServiceNotFound}}
	}

	price := input.PriceCents
	if price <= 0 {
		price = svc.PriceCents
	}

	reservation := &domain.Reservation{
		ID:              uuid.NewString(),
		CustomerID:      input.CustomerID,
		StaffID:         input.StaffID,
		ServiceID:       input.ServiceID,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		Status:          domain.ReservationStatusConfirmed,
		PriceCents:      price,
		Notes:           input.Notes,
		ModifiableUntil: input.StartTime.Add(-s.modifiableWindow),
	}

	if err := s.reservations.Create(ctx, reservation); err != nil {
		releaseLock()
		if errors.Is(err, domain.ErrSlotTaken) {
			// A concurrent create won the race and the exclusion constraint
			// rejected this insert. Surface it like any detected conflict.
			existing, lookupErr := s.reservations.FindConflicts(ctx, input.StaffID, input.StartTime, input.EndTime)
			if lookupErr != nil {
				log.Printf("WARNING: conflict detail lookup failed after constraint violation: %v", lookupErr)
			}
			return nil, &domain.ConflictError{Conflicts: filterConflicts(existing, input.StartTime, input.EndTime)}
		}
		return nil, err
	}

	if s.cache != nil {
		day, _ := domain.DayBounds(reservation.StartTime)
		_ = s.cache.InvalidateSchedule(ctx, reservation.StaffID, day)
	}

	s.publishConfirmation(ctx, reservation, customer, staffMember, svc)
	releaseLock()
	return reservation, nil
}

func (s *ReservationService) publishConfirmation(ctx context.Context, reservation *domain.Reservation, customer *domain.Customer, staffMember *domain.Staff, svc *domain.Service) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	event := kafka.ReservationEvent{
		Type:            "reservation_confirmed",
		ReservationID:   reservation.ID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		StaffName:       staffMember.Name,
		ServiceName:     svc.Name,
		Location:        staffMember.Location,
		ReservationDate: reservation.StartTime.Format("2006-01-02"),
		ReservationTime: reservation.StartTime.Format("15:04"),
		TotalPriceCents: reservation.PriceCents,
		Status:          string(reservation.Status),
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, reservation.ID, event); err != nil {
		log.Printf("WARNING: failed to publish confirmation for reservation %s: %v", reservation.ID, err)
	}
}

// ListByDay returns the reservations starting within the given day, optionally
// filtered by staff member. Per-staff schedules are served cache-aside.
func (s *ReservationService) ListByDay(ctx context.Context, day time.Time, staffID string) ([]domain.Reservation, error) {
	dayStart, dayEnd := domain.DayBounds(day)

	if s.cache != nil && staffID != "" {
		if cached, err := s.cache.GetSchedule(ctx, staffID, dayStart); err == nil && cached != nil {
			return cached, nil
		}
	}

	reservations, err := s.reservations.ListByDay(ctx, dayStart, dayEnd, staffID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && staffID != "" {
		_ = s.cache.SetSchedule(ctx, staffID, dayStart, reservations)
	}
	return reservations, nil
}

// Cancel moves a reservation to cancelled. Cancelling an already cancelled or
// completed reservation is a no-op returning the current state.
func (s *ReservationService) Cancel(ctx context.Context, id string) (*domain.Reservation, error) {
	current, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.ReservationStatusCancelled || current.Status == domain.ReservationStatusCompleted {
		return current, nil
	}

	updated, err := s.reservations.UpdateStatus(ctx, id, domain.ReservationStatusCancelled)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		day, _ := domain.DayBounds(updated.StartTime)
		_ = s.cache.InvalidateSchedule(ctx, updated.StaffID, day)
	}
	return updated, nil
}

// CompleteFinished moves confirmed reservations whose end time has passed to
// completed. Run periodically by the worker.
func (s *ReservationService) CompleteFinished(ctx context.Context) ([]domain.Reservation, error) {
	completed, err := s.reservations.CompleteFinishedBefore(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		for _, r := range completed {
			day, _ := domain.DayBounds(r.StartTime)
			_ = s.cache.InvalidateSchedule(ctx, r.StaffID, day)
		}
	}
	return completed, nil
}

var _ ReservationUseCase = (*ReservationService)(nil)
