package domain

import (
	"fmt"
	"time"
)

// Order агрегирует один клиентский заказ на места конференции.
// Инвариант: после подтверждения ни одна мутирующая команда не проходит.
type Order struct {
	ID           string
	ConferenceID string
	Seats        []SeatQuantity
	Confirmed    bool
	Expired      bool
	Registrant   PersonalInfo
	TotalMinor   int64
	// AccessCode выдаётся при создании и позволяет регистранту вернуться к заказу.
	AccessCode string
	// ReservationAutoExpiration — дедлайн, после которого сага отклонит заказ.
	ReservationAutoExpiration time.Time
	Version                   int64
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// IsNew сообщает, что заказ ещё не создавался.
func (o Order) IsNew() bool { return o.ID == "" }

// HandleCommand валидирует команду и возвращает события-результаты.
// Ошибки валидации и ошибки состояния различимы через errors.Is.
func (o Order) HandleCommand(cmd Command, env CommandEnv) ([]Event, error) {
	switch c := cmd.(type) {
	case RegisterToConference:
		return o.register(c, env)
	case MarkSeatsAsReserved:
		return o.markSeatsAsReserved(c, env)
	case RejectOrder:
		return o.reject(c)
	case ConfirmOrder:
		return o.confirm(c)
	case AssignRegistrantDetails:
		return o.assignRegistrant(c)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.CommandType())
	}
}

func (o Order) register(c RegisterToConference, env CommandEnv) ([]Event, error) {
	if c.OrderID == "" {
		return nil, ErrOrderIDRequired
	}
	if c.ConferenceID == "" {
		return nil, ErrConferenceIDRequired
	}
	if err := validateSeats(c.Seats); err != nil {
		return nil, err
	}

	total, err := env.Pricing.CalculateTotalOrderPrice(c.ConferenceID, c.Seats)
	if err != nil {
		return nil, fmt.Errorf("calculate order total: %w", err)
	}
	totals := OrderTotalsCalculated{OrderID: c.OrderID, TotalMinor: total}

	if o.IsNew() {
		return []Event{
			OrderPlaced{
				OrderID:                   c.OrderID,
				ConferenceID:              c.ConferenceID,
				Seats:                     cloneSeats(c.Seats),
				ReservationAutoExpiration: env.Now.Add(env.ReservationTTL),
				AccessCode:                env.IDs.NewID(),
			},
			totals,
		}, nil
	}

	if err := o.assertNotConfirmed(); err != nil {
		return nil, err
	}
	return []Event{
		OrderUpdated{OrderID: o.ID, Seats: cloneSeats(c.Seats)},
		totals,
	}, nil
}

// markSeatsAsReserved сравнивает запрошенные и фактически удержанные
// количества. Недобор хотя бы по одному типу — частичный результат: заказ
// сжимается до удержанных мест и пересчитывает стоимость.
func (o Order) markSeatsAsReserved(c MarkSeatsAsReserved, env CommandEnv) ([]Event, error) {
	if err := o.assertNotConfirmed(); err != nil {
		return nil, err
	}

	partial := false
	for _, requested := range o.Seats {
		reserved, _ := FindSeatQuantity(c.Seats, requested.SeatTypeID)
		if reserved < requested.Quantity {
			partial = true
			break
		}
	}

	if !partial {
		return []Event{OrderReservationCompleted{
			OrderID: o.ID,
			Seats:   cloneSeats(c.Seats),
		}}, nil
	}

	total, err := env.Pricing.CalculateTotalOrderPrice(o.ConferenceID, c.Seats)
	if err != nil {
		return nil, fmt.Errorf("recalculate order total: %w", err)
	}
	return []Event{
		OrderPartiallyReserved{OrderID: o.ID, Seats: cloneSeats(c.Seats)},
		OrderTotalsCalculated{OrderID: o.ID, TotalMinor: total},
	}, nil
}

func (o Order) reject(c RejectOrder) ([]Event, error) {
	if err := o.assertNotConfirmed(); err != nil {
		return nil, err
	}
	return []Event{OrderExpired{OrderID: o.ID}}, nil
}

func (o Order) confirm(c ConfirmOrder) ([]Event, error) {
	if err := o.assertNotConfirmed(); err != nil {
		return nil, err
	}
	return []Event{OrderConfirmed{OrderID: o.ID}}, nil
}

func (o Order) assignRegistrant(c AssignRegistrantDetails) ([]Event, error) {
	if err := o.assertNotConfirmed(); err != nil {
		return nil, err
	}
	if c.Email == "" || (c.FirstName == "" && c.LastName == "") {
		return nil, ErrRegistrantRequired
	}
	return []Event{OrderRegistrantAssigned{
		OrderID: o.ID,
		Registrant: PersonalInfo{
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
		},
	}}, nil
}

// assertNotConfirmed детерминированно отклоняет мутации подтверждённого заказа.
func (o Order) assertNotConfirmed() error {
	if o.Confirmed {
		return fmt.Errorf("%w: %s", ErrOrderConfirmed, o.ID)
	}
	return nil
}

// Apply возвращает новое состояние заказа после события.
func (o Order) Apply(event Event, now time.Time) Order {
	next := o
	next.Seats = cloneSeats(o.Seats)
	next.UpdatedAt = now

	switch e := event.(type) {
	case OrderPlaced:
		next.ID = e.OrderID
		next.ConferenceID = e.ConferenceID
		next.Seats = cloneSeats(e.Seats)
		next.ReservationAutoExpiration = e.ReservationAutoExpiration
		next.AccessCode = e.AccessCode
		next.CreatedAt = now
	case OrderUpdated:
		next.Seats = cloneSeats(e.Seats)
	case OrderTotalsCalculated:
		next.TotalMinor = e.TotalMinor
	case OrderPartiallyReserved:
		next.Seats = cloneSeats(e.Seats)
	case OrderReservationCompleted:
		next.Seats = cloneSeats(e.Seats)
	case OrderExpired:
		next.Expired = true
	case OrderConfirmed:
		next.Confirmed = true
	case OrderRegistrantAssigned:
		next.Registrant = e.Registrant
	}
	return next
}

func validateSeats(seats []SeatQuantity) error {
	if len(seats) == 0 {
		return ErrSeatsRequired
	}
	for _, seat := range seats {
		if seat.Quantity <= 0 {
			return fmt.Errorf("%w: %s", ErrSeatQuantityInvalid, seat.SeatTypeID)
		}
	}
	return nil
}
