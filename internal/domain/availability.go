package domain

import (
	"fmt"
	"time"
)

// SeatsAvailability агрегирует леджер доступных мест одной конференции и
// удерживаемые под резервирования количества. Единственный писатель своего
// состояния: команды для одной конференции обрабатываются последовательно.
type SeatsAvailability struct {
	// ID леджера совпадает с идентификатором конференции.
	ID string
	// Seats — доступные количества по типам мест, уникальным по SeatTypeID.
	Seats []SeatQuantity
	// PendingReservations — удерживаемые количества по reservation_id.
	PendingReservations map[string][]SeatQuantity
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewSeatsAvailability создаёт пустой леджер для конференции.
func NewSeatsAvailability(conferenceID string, now time.Time) SeatsAvailability {
	return SeatsAvailability{
		ID:                  conferenceID,
		PendingReservations: make(map[string][]SeatQuantity),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// HandleCommand валидирует команду против текущего состояния и возвращает
// события-результаты. Состояние не мутируется: события применяются отдельно
// через Apply.
func (a SeatsAvailability) HandleCommand(cmd Command, env CommandEnv) ([]Event, error) {
	switch c := cmd.(type) {
	case MakeSeatReservation:
		return a.makeReservation(c)
	case CommitSeatReservation:
		return a.commitReservation(c)
	case CancelSeatReservation:
		return a.cancelReservation(c)
	case AddSeats:
		return a.addSeats(c)
	case RemoveSeats:
		return a.removeSeats(c)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.CommandType())
	}
}

// makeReservation считает новое разбиение по каждому запрошенному типу места.
// Повторная доставка команды с тем же reservation_id идемпотентна: дельта
// считается от уже удерживаемого этим резервированием количества.
func (a SeatsAvailability) makeReservation(c MakeSeatReservation) ([]Event, error) {
	if c.ReservationID == "" {
		return nil, ErrReservationIDRequired
	}
	if len(c.Seats) == 0 {
		return nil, ErrSeatsRequired
	}
	for _, seat := range c.Seats {
		if seat.Quantity <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrSeatQuantityInvalid, seat.SeatTypeID)
		}
		if _, ok := FindSeatQuantity(a.Seats, seat.SeatTypeID); !ok {
			return nil, fmt.Errorf("%w: %s", ErrSeatTypeNotFound, seat.SeatTypeID)
		}
	}

	oldReserved := a.PendingReservations[c.ReservationID]
	available := cloneSeats(a.Seats)
	reserved := make([]SeatQuantity, 0, len(c.Seats))

	for _, seat := range c.Seats {
		avail, _ := FindSeatQuantity(available, seat.SeatTypeID)
		held, _ := FindSeatQuantity(oldReserved, seat.SeatTypeID)

		newReserved, newAvailable := ReserveSeats(avail, seat.Quantity, held)
		reserved = append(reserved, SeatQuantity{SeatTypeID: seat.SeatTypeID, Quantity: newReserved})
		available = UpsertSeatQuantity(available, seat.SeatTypeID, newAvailable)
	}

	// Типы, которые резервирование удерживало раньше, но в новом составе
	// отсутствуют, возвращаются в доступные целиком.
	for _, held := range oldReserved {
		if _, requested := FindSeatQuantity(c.Seats, held.SeatTypeID); requested {
			continue
		}
		avail, _ := FindSeatQuantity(available, held.SeatTypeID)
		available = UpsertSeatQuantity(available, held.SeatTypeID, avail+held.Quantity)
	}

	return []Event{SeatsReserved{
		ReservationID:  c.ReservationID,
		ConferenceID:   a.ID,
		ReservedSeats:  reserved,
		AvailableSeats: available,
	}}, nil
}

func (a SeatsAvailability) commitReservation(c CommitSeatReservation) ([]Event, error) {
	if c.ReservationID == "" {
		return nil, ErrReservationIDRequired
	}
	if _, ok := a.PendingReservations[c.ReservationID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrReservationNotFound, c.ReservationID)
	}
	return []Event{SeatsReservationCommitted{
		ReservationID: c.ReservationID,
		ConferenceID:  a.ID,
	}}, nil
}

func (a SeatsAvailability) cancelReservation(c CancelSeatReservation) ([]Event, error) {
	if c.ReservationID == "" {
		return nil, ErrReservationIDRequired
	}
	held, ok := a.PendingReservations[c.ReservationID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReservationNotFound, c.ReservationID)
	}

	available := cloneSeats(a.Seats)
	for _, seat := range held {
		avail, _ := FindSeatQuantity(available, seat.SeatTypeID)
		available = UpsertSeatQuantity(available, seat.SeatTypeID, avail+seat.Quantity)
	}

	return []Event{SeatsReservationCancelled{
		ReservationID:  c.ReservationID,
		ConferenceID:   a.ID,
		AvailableSeats: available,
	}}, nil
}

func (a SeatsAvailability) addSeats(c AddSeats) ([]Event, error) {
	if c.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrSeatQuantityInvalid, c.SeatTypeID)
	}
	current, _ := FindSeatQuantity(a.Seats, c.SeatTypeID)
	return []Event{SeatsAdded{
		ConferenceID: a.ID,
		SeatTypeID:   c.SeatTypeID,
		Quantity:     c.Quantity,
		NewAvailable: current + c.Quantity,
	}}, nil
}

func (a SeatsAvailability) removeSeats(c RemoveSeats) ([]Event, error) {
	if c.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrSeatQuantityInvalid, c.SeatTypeID)
	}
	current, ok := FindSeatQuantity(a.Seats, c.SeatTypeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSeatTypeNotFound, c.SeatTypeID)
	}
	remaining := current - c.Quantity
	if remaining < 0 {
		remaining = 0
	}
	return []Event{SeatsRemoved{
		ConferenceID: a.ID,
		SeatTypeID:   c.SeatTypeID,
		Quantity:     c.Quantity,
		NewAvailable: remaining,
	}}, nil
}

// Apply возвращает новое состояние леджера после события. Исходное значение
// не мутируется.
func (a SeatsAvailability) Apply(event Event, now time.Time) SeatsAvailability {
	next := a.clone()
	next.UpdatedAt = now

	switch e := event.(type) {
	case SeatsReserved:
		// Леджер доступности заменяется целиком, удержание — upsert.
		next.Seats = cloneSeats(e.AvailableSeats)
		next.PendingReservations[e.ReservationID] = cloneSeats(e.ReservedSeats)
	case SeatsReservationCommitted:
		// Места остаются списанными: доступные количества не меняются.
		delete(next.PendingReservations, e.ReservationID)
	case SeatsReservationCancelled:
		delete(next.PendingReservations, e.ReservationID)
		next.Seats = cloneSeats(e.AvailableSeats)
	case SeatsAdded:
		next.Seats = UpsertSeatQuantity(next.Seats, e.SeatTypeID, e.NewAvailable)
	case SeatsRemoved:
		next.Seats = UpsertSeatQuantity(next.Seats, e.SeatTypeID, e.NewAvailable)
	}
	return next
}

// PendingFor возвращает копию удерживаемых мест по резервированию.
func (a SeatsAvailability) PendingFor(reservationID string) ([]SeatQuantity, bool) {
	held, ok := a.PendingReservations[reservationID]
	if !ok {
		return nil, false
	}
	return cloneSeats(held), true
}

// Clone возвращает глубокую копию леджера (для защитного копирования в хранилищах).
func (a SeatsAvailability) Clone() SeatsAvailability {
	return a.clone()
}

func (a SeatsAvailability) clone() SeatsAvailability {
	next := a
	next.Seats = cloneSeats(a.Seats)
	next.PendingReservations = make(map[string][]SeatQuantity, len(a.PendingReservations))
	for id, seats := range a.PendingReservations {
		next.PendingReservations[id] = cloneSeats(seats)
	}
	return next
}

func cloneSeats(seats []SeatQuantity) []SeatQuantity {
	result := make([]SeatQuantity, len(seats))
	copy(result, seats)
	return result
}
