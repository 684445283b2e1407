package handlers

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crs/internal/domain"
	"github.com/vladislavdragonenkov/crs/internal/messaging"
)

// AssignmentsHandler — исполнитель команд карты рассадки. Новый агрегат
// допустим только для CreateSeatAssignments.
type AssignmentsHandler struct {
	assignments domain.AssignmentsRepository
	publisher   *Publisher
	clock       func() time.Time
	logger      *log.Entry
}

// NewAssignmentsHandler создаёт обработчик команд рассадки.
func NewAssignmentsHandler(
	assignments domain.AssignmentsRepository,
	publisher *Publisher,
	logger *log.Entry,
) *AssignmentsHandler {
	if logger == nil {
		logger = log.New().WithField("component", "assignments-handler")
	}
	return &AssignmentsHandler{
		assignments: assignments,
		publisher:   publisher,
		clock:       time.Now,
		logger:      logger,
	}
}

// Register привязывает команды рассадки к шине.
func (h *AssignmentsHandler) Register(bus *messaging.Bus) {
	for _, commandType := range []string{
		domain.CommandTypeCreateSeatAssignments,
		domain.CommandTypeAssignSeat,
		domain.CommandTypeUnassignSeat,
		domain.CommandTypeUpdateSeatAssignment,
	} {
		bus.RegisterCommand(commandType, h.Handle)
	}
}

// Handle выполняет одну команду рассадки.
func (h *AssignmentsHandler) Handle(cmd domain.Command) error {
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		assignments, err := h.assignments.Get(cmd.AggregateID())
		if err != nil {
			if !errors.Is(err, domain.ErrAggregateNotFound) {
				return err
			}
			if cmd.CommandType() != domain.CommandTypeCreateSeatAssignments {
				return fmt.Errorf("%w: assignments %s", domain.ErrAggregateNotFound, cmd.AggregateID())
			}
			assignments = domain.SeatAssignments{}
		}

		now := h.clock().UTC()
		events, err := assignments.HandleCommand(cmd, domain.CommandEnv{Now: now})
		if err != nil {
			return err
		}
		if len(events) == 0 {
			// Снятие с уже свободной позиции — допустимый no-op.
			return nil
		}
		for _, event := range events {
			assignments = assignments.Apply(event, now)
		}

		if err := h.assignments.Save(assignments); err != nil {
			if domain.IsVersionConflict(err) && attempt < maxSaveRetries-1 {
				h.logger.WithFields(log.Fields{
					"assignments_id": assignments.ID,
					"attempt":        attempt + 1,
				}).Warn("version conflict detected, retrying")
				continue
			}
			return err
		}

		h.publisher.Publish(AggregateTypeAssignments, events, now)
		return nil
	}
	return domain.ErrVersionConflict
}
