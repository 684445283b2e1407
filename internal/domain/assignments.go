package domain

import (
	"fmt"
	"time"
)

// SeatAssignment — одна позиция рассадки.
type SeatAssignment struct {
	SeatTypeID string       `json:"seat_type_id"`
	Attendee   PersonalInfo `json:"attendee"`
}

// SeatAssignments сопоставляет позиции мест заказа участникам.
// Независимый жизненный цикл: создаётся один раз под финализированное
// количество мест и не координируется сагой.
type SeatAssignments struct {
	ID        string
	OrderID   string
	Seats     map[int]SeatAssignment
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsNew сообщает, что карта рассадки ещё не создавалась.
func (a SeatAssignments) IsNew() bool { return a.ID == "" }

// DeriveAssignmentsID детерминированно выводит идентификатор карты рассадки
// из заказа, что делает её создание идемпотентным.
func DeriveAssignmentsID(orderID string) string {
	return "assignments-" + orderID
}

// HandleCommand валидирует команду и возвращает события.
func (a SeatAssignments) HandleCommand(cmd Command, env CommandEnv) ([]Event, error) {
	switch c := cmd.(type) {
	case CreateSeatAssignments:
		return a.create(c)
	case AssignSeat:
		return a.assign(c)
	case UnassignSeat:
		return a.unassign(c)
	case UpdateSeatAssignment:
		return a.update(c)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.CommandType())
	}
}

func (a SeatAssignments) create(c CreateSeatAssignments) ([]Event, error) {
	if c.OrderID == "" {
		return nil, ErrOrderIDRequired
	}
	if err := validateSeats(c.Seats); err != nil {
		return nil, err
	}
	if !a.IsNew() {
		return nil, fmt.Errorf("%w: assignments %s already exist", ErrVersionConflict, a.ID)
	}
	return []Event{SeatAssignmentsCreated{
		AssignmentsID: c.AssignmentsID,
		OrderID:       c.OrderID,
		Seats:         cloneSeats(c.Seats),
	}}, nil
}

func (a SeatAssignments) assign(c AssignSeat) ([]Event, error) {
	seat, ok := a.Seats[c.Position]
	if !ok {
		return nil, fmt.Errorf("%w: position %d", ErrSeatTypeNotFound, c.Position)
	}
	if c.Attendee.IsZero() {
		return nil, ErrRegistrantRequired
	}
	return []Event{SeatAssigned{
		AssignmentsID: a.ID,
		Position:      c.Position,
		SeatTypeID:    seat.SeatTypeID,
		Attendee:      c.Attendee,
	}}, nil
}

func (a SeatAssignments) unassign(c UnassignSeat) ([]Event, error) {
	seat, ok := a.Seats[c.Position]
	if !ok {
		return nil, fmt.Errorf("%w: position %d", ErrSeatTypeNotFound, c.Position)
	}
	if seat.Attendee.IsZero() {
		// Повторная доставка: позиция уже свободна.
		return nil, nil
	}
	return []Event{SeatUnassigned{AssignmentsID: a.ID, Position: c.Position}}, nil
}

func (a SeatAssignments) update(c UpdateSeatAssignment) ([]Event, error) {
	seat, ok := a.Seats[c.Position]
	if !ok {
		return nil, fmt.Errorf("%w: position %d", ErrSeatTypeNotFound, c.Position)
	}
	if seat.Attendee.IsZero() {
		return nil, fmt.Errorf("%w: position %d is not assigned", ErrAggregateNotFound, c.Position)
	}
	if c.Attendee.IsZero() {
		return nil, ErrRegistrantRequired
	}
	return []Event{SeatAssignmentUpdated{
		AssignmentsID: a.ID,
		Position:      c.Position,
		Attendee:      c.Attendee,
	}}, nil
}

// Clone возвращает глубокую копию карты рассадки.
func (a SeatAssignments) Clone() SeatAssignments {
	next := a
	next.Seats = make(map[int]SeatAssignment, len(a.Seats))
	for pos, seat := range a.Seats {
		next.Seats[pos] = seat
	}
	return next
}

// Apply возвращает новое состояние карты рассадки после события.
func (a SeatAssignments) Apply(event Event, now time.Time) SeatAssignments {
	next := a
	next.Seats = make(map[int]SeatAssignment, len(a.Seats))
	for pos, seat := range a.Seats {
		next.Seats[pos] = seat
	}
	next.UpdatedAt = now

	switch e := event.(type) {
	case SeatAssignmentsCreated:
		next.ID = e.AssignmentsID
		next.OrderID = e.OrderID
		next.CreatedAt = now
		next.Seats = make(map[int]SeatAssignment)
		position := 0
		for _, seat := range e.Seats {
			for i := int32(0); i < seat.Quantity; i++ {
				next.Seats[position] = SeatAssignment{SeatTypeID: seat.SeatTypeID}
				position++
			}
		}
	case SeatAssigned:
		next.Seats[e.Position] = SeatAssignment{SeatTypeID: e.SeatTypeID, Attendee: e.Attendee}
	case SeatUnassigned:
		seat := next.Seats[e.Position]
		seat.Attendee = PersonalInfo{}
		next.Seats[e.Position] = seat
	case SeatAssignmentUpdated:
		seat := next.Seats[e.Position]
		seat.Attendee = e.Attendee
		next.Seats[e.Position] = seat
	}
	return next
}
