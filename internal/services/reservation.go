package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tablesideapp/tableside/internal/backend"
	"github.com/tablesideapp/tableside/internal/logging"
	"github.com/tablesideapp/tableside/internal/models"
)

type reservationBackend interface {
	CreateReservation(ctx context.Context, caller backend.Caller, reservation models.Reservation) (*models.Reservation, error)
}

type ReservationService struct {
	backend  reservationBackend
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger
}

func NewReservationService(b reservationBackend, logger *slog.Logger) *ReservationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReservationService{
		backend:  b,
		validate: newValidator(),
		now:      time.Now,
		logger:   logger.With("component", "reservations"),
	}
}

func (s *ReservationService) Create(ctx context.Context, caller backend.Caller, reservation models.Reservation) (*models.Reservation, error) {
	reservation.Name = strings.TrimSpace(reservation.Name)
	reservation.Phone = strings.TrimSpace(reservation.Phone)
	if err := validateInput(s.validate, reservation); err != nil {
		return nil, err
	}
	if !reservation.At.After(s.now()) {
		return nil, &ValidationError{Fields: map[string]string{"at": "must be in the future"}}
	}

	created, err := s.backend.CreateReservation(ctx, caller, reservation)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx, s.logger).Info("reservation created", "reservation_id", created.ID, "party_size", reservation.PartySize)
	return created, nil
}
