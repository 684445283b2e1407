package handlers

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/messaging"
)

// AvailabilityHandler — исполнитель команд леджера доступности мест.
// Леджер конференции создаётся только командой AddSeats; резервирование
// против несуществующей конференции — ошибка.
type AvailabilityHandler struct {
	availability domain.AvailabilityRepository
	publisher    *Publisher
	clock        func() time.Time
	logger       *log.Entry
}

// NewAvailabilityHandler создаёт обработчик команд доступности.
func NewAvailabilityHandler(
	availability domain.AvailabilityRepository,
	publisher *Publisher,
	logger *log.Entry,
) *AvailabilityHandler {
	if logger == nil {
		logger = log.New().WithField("component", "availability-handler")
	}
	return &AvailabilityHandler{
		availability: availability,
		publisher:    publisher,
		clock:        time.Now,
		logger:       logger,
	}
}

// Register привязывает все команды доступности к шине.
func (h *AvailabilityHandler) Register(bus *messaging.Bus) {
	for _, commandType := range []string{
		domain.CommandTypeMakeSeatReservation,
		domain.CommandTypeCommitSeatReservation,
		domain.CommandTypeCancelSeatReservation,
		domain.CommandTypeAddSeats,
		domain.CommandTypeRemoveSeats,
	} {
		bus.RegisterCommand(commandType, h.Handle)
	}
}

// Handle выполняет одну команду леджера.
func (h *AvailabilityHandler) Handle(cmd domain.Command) error {
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		now := h.clock().UTC()

		availability, err := h.availability.Get(cmd.AggregateID())
		if err != nil {
			if !errors.Is(err, domain.ErrAggregateNotFound) {
				return err
			}
			if cmd.CommandType() != domain.CommandTypeAddSeats {
				return fmt.Errorf("%w: conference %s", domain.ErrAggregateNotFound, cmd.AggregateID())
			}
			availability = domain.NewSeatsAvailability(cmd.AggregateID(), now)
		}

		events, err := availability.HandleCommand(cmd, domain.CommandEnv{Now: now})
		if err != nil {
			return err
		}
		for _, event := range events {
			availability = availability.Apply(event, now)
		}

		if err := h.availability.Save(availability); err != nil {
			if domain.IsVersionConflict(err) && attempt < maxSaveRetries-1 {
				h.logger.WithFields(log.Fields{
					"conference_id": availability.ID,
					"attempt":       attempt + 1,
				}).Warn("version conflict detected, retrying")
				continue
			}
			return err
		}

		h.publisher.Publish(AggregateTypeAvailability, events, now)
		return nil
	}
	return domain.ErrVersionConflict
}
