package domain

import "time"

// Event описывает свершившийся факт, опубликованный агрегатом-владельцем.
// Сага и внешние подписчики маршрутизируют события по EventType.
type Event interface {
	AggregateID() string
	EventType() string
}

// Типы событий.
const (
	EventTypeOrderPlaced               = "OrderPlaced"
	EventTypeOrderUpdated              = "OrderUpdated"
	EventTypeOrderTotalsCalculated     = "OrderTotalsCalculated"
	EventTypeOrderPartiallyReserved    = "OrderPartiallyReserved"
	EventTypeOrderReservationCompleted = "OrderReservationCompleted"
	EventTypeOrderExpired              = "OrderExpired"
	EventTypeOrderConfirmed            = "OrderConfirmed"
	EventTypeOrderRegistrantAssigned   = "OrderRegistrantAssigned"

	EventTypeSeatsReserved             = "SeatsReserved"
	EventTypeSeatsReservationCommitted = "SeatsReservationCommitted"
	EventTypeSeatsReservationCancelled = "SeatsReservationCancelled"
	EventTypeSeatsAdded                = "SeatsAdded"
	EventTypeSeatsRemoved              = "SeatsRemoved"

	EventTypePaymentInitiated = "PaymentInitiated"
	EventTypePaymentCompleted = "PaymentCompleted"
	EventTypePaymentCanceled  = "PaymentCanceled"
	EventTypePaymentRejected  = "PaymentRejected"

	EventTypeSeatAssignmentsCreated = "SeatAssignmentsCreated"
	EventTypeSeatAssigned           = "SeatAssigned"
	EventTypeSeatUnassigned         = "SeatUnassigned"
	EventTypeSeatAssignmentUpdated  = "SeatAssignmentUpdated"
)

// PersonalInfo — персональные данные регистранта или участника.
type PersonalInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// IsZero сообщает, заполнены ли данные.
func (p PersonalInfo) IsZero() bool {
	return p.FirstName == "" && p.LastName == "" && p.Email == ""
}

// OrderPlaced публикуется при создании нового заказа. Несёт дедлайн
// автоистечения резервирования и код доступа.
type OrderPlaced struct {
	OrderID                   string         `json:"order_id"`
	ConferenceID              string         `json:"conference_id"`
	Seats                     []SeatQuantity `json:"seats"`
	ReservationAutoExpiration time.Time      `json:"reservation_auto_expiration"`
	AccessCode                string         `json:"access_code"`
}

func (e OrderPlaced) AggregateID() string { return e.OrderID }
func (e OrderPlaced) EventType() string   { return EventTypeOrderPlaced }

// OrderUpdated публикуется при замене состава мест существующего заказа.
type OrderUpdated struct {
	OrderID string         `json:"order_id"`
	Seats   []SeatQuantity `json:"seats"`
}

func (e OrderUpdated) AggregateID() string { return e.OrderID }
func (e OrderUpdated) EventType() string   { return EventTypeOrderUpdated }

// OrderTotalsCalculated несёт пересчитанную стоимость заказа.
type OrderTotalsCalculated struct {
	OrderID    string `json:"order_id"`
	TotalMinor int64  `json:"total_minor"`
}

func (e OrderTotalsCalculated) AggregateID() string { return e.OrderID }
func (e OrderTotalsCalculated) EventType() string   { return EventTypeOrderTotalsCalculated }

// OrderPartiallyReserved — зарезервировано меньше, чем запрошено.
// Заказ сжимается до фактически удержанных мест.
type OrderPartiallyReserved struct {
	OrderID string         `json:"order_id"`
	Seats   []SeatQuantity `json:"seats"`
}

func (e OrderPartiallyReserved) AggregateID() string { return e.OrderID }
func (e OrderPartiallyReserved) EventType() string   { return EventTypeOrderPartiallyReserved }

// OrderReservationCompleted — все запрошенные места удержаны полностью.
type OrderReservationCompleted struct {
	OrderID string         `json:"order_id"`
	Seats   []SeatQuantity `json:"seats"`
}

func (e OrderReservationCompleted) AggregateID() string { return e.OrderID }
func (e OrderReservationCompleted) EventType() string   { return EventTypeOrderReservationCompleted }

// OrderExpired — заказ отклонён (истечение дедлайна или компенсация саги).
type OrderExpired struct {
	OrderID string `json:"order_id"`
}

func (e OrderExpired) AggregateID() string { return e.OrderID }
func (e OrderExpired) EventType() string   { return EventTypeOrderExpired }

// OrderConfirmed — заказ финализирован; дальнейшие мутации запрещены.
type OrderConfirmed struct {
	OrderID string `json:"order_id"`
}

func (e OrderConfirmed) AggregateID() string { return e.OrderID }
func (e OrderConfirmed) EventType() string   { return EventTypeOrderConfirmed }

// OrderRegistrantAssigned — к заказу прикреплены данные регистранта.
type OrderRegistrantAssigned struct {
	OrderID    string       `json:"order_id"`
	Registrant PersonalInfo `json:"registrant"`
}

func (e OrderRegistrantAssigned) AggregateID() string { return e.OrderID }
func (e OrderRegistrantAssigned) EventType() string   { return EventTypeOrderRegistrantAssigned }

// SeatsReserved несёт по каждому запрошенному типу новое удержанное
// количество и полный новый леджер доступности (применяется целиком).
type SeatsReserved struct {
	ReservationID  string         `json:"reservation_id"`
	ConferenceID   string         `json:"conference_id"`
	ReservedSeats  []SeatQuantity `json:"reserved_seats"`
	AvailableSeats []SeatQuantity `json:"available_seats"`
}

func (e SeatsReserved) AggregateID() string { return e.ConferenceID }
func (e SeatsReserved) EventType() string   { return EventTypeSeatsReserved }

// SeatsReservationCommitted — удержанные места списаны окончательно.
type SeatsReservationCommitted struct {
	ReservationID string `json:"reservation_id"`
	ConferenceID  string `json:"conference_id"`
}

func (e SeatsReservationCommitted) AggregateID() string { return e.ConferenceID }
func (e SeatsReservationCommitted) EventType() string   { return EventTypeSeatsReservationCommitted }

// SeatsReservationCancelled — удержанные места возвращены в доступные.
type SeatsReservationCancelled struct {
	ReservationID  string         `json:"reservation_id"`
	ConferenceID   string         `json:"conference_id"`
	AvailableSeats []SeatQuantity `json:"available_seats"`
}

func (e SeatsReservationCancelled) AggregateID() string { return e.ConferenceID }
func (e SeatsReservationCancelled) EventType() string   { return EventTypeSeatsReservationCancelled }

// SeatsAdded — вместимость типа места увеличена.
type SeatsAdded struct {
	ConferenceID string `json:"conference_id"`
	SeatTypeID   string `json:"seat_type_id"`
	Quantity     int32  `json:"quantity"`
	NewAvailable int32  `json:"new_available"`
}

func (e SeatsAdded) AggregateID() string { return e.ConferenceID }
func (e SeatsAdded) EventType() string   { return EventTypeSeatsAdded }

// SeatsRemoved — вместимость типа места уменьшена (с полом в ноль).
type SeatsRemoved struct {
	ConferenceID string `json:"conference_id"`
	SeatTypeID   string `json:"seat_type_id"`
	Quantity     int32  `json:"quantity"`
	NewAvailable int32  `json:"new_available"`
}

func (e SeatsRemoved) AggregateID() string { return e.ConferenceID }
func (e SeatsRemoved) EventType() string   { return EventTypeSeatsRemoved }

// PaymentInitiated — платёж инициализирован у стороннего процессора.
type PaymentInitiated struct {
	PaymentID   string `json:"payment_id"`
	OrderID     string `json:"order_id"`
	AmountMinor int64  `json:"amount_minor"`
}

func (e PaymentInitiated) AggregateID() string { return e.PaymentID }
func (e PaymentInitiated) EventType() string   { return EventTypePaymentInitiated }

// PaymentCompleted — платёж успешно завершён.
type PaymentCompleted struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
}

func (e PaymentCompleted) AggregateID() string { return e.PaymentID }
func (e PaymentCompleted) EventType() string   { return EventTypePaymentCompleted }

// PaymentCanceled — платёж отменён или отклонён процессором.
type PaymentCanceled struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
}

func (e PaymentCanceled) AggregateID() string { return e.PaymentID }
func (e PaymentCanceled) EventType() string   { return EventTypePaymentCanceled }

// PaymentRejected — процессор отклонил платёж.
type PaymentRejected struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
}

func (e PaymentRejected) AggregateID() string { return e.PaymentID }
func (e PaymentRejected) EventType() string   { return EventTypePaymentRejected }

// SeatAssignmentsCreated — карта рассадки создана под финализированный заказ.
type SeatAssignmentsCreated struct {
	AssignmentsID string         `json:"assignments_id"`
	OrderID       string         `json:"order_id"`
	Seats         []SeatQuantity `json:"seats"`
}

func (e SeatAssignmentsCreated) AggregateID() string { return e.AssignmentsID }
func (e SeatAssignmentsCreated) EventType() string   { return EventTypeSeatAssignmentsCreated }

// SeatAssigned — позиция рассадки занята участником.
type SeatAssigned struct {
	AssignmentsID string       `json:"assignments_id"`
	Position      int          `json:"position"`
	SeatTypeID    string       `json:"seat_type_id"`
	Attendee      PersonalInfo `json:"attendee"`
}

func (e SeatAssigned) AggregateID() string { return e.AssignmentsID }
func (e SeatAssigned) EventType() string   { return EventTypeSeatAssigned }

// SeatUnassigned — позиция рассадки освобождена.
type SeatUnassigned struct {
	AssignmentsID string `json:"assignments_id"`
	Position      int    `json:"position"`
}

func (e SeatUnassigned) AggregateID() string { return e.AssignmentsID }
func (e SeatUnassigned) EventType() string   { return EventTypeSeatUnassigned }

// SeatAssignmentUpdated — данные участника на позиции обновлены.
type SeatAssignmentUpdated struct {
	AssignmentsID string       `json:"assignments_id"`
	Position      int          `json:"position"`
	Attendee      PersonalInfo `json:"attendee"`
}

func (e SeatAssignmentUpdated) AggregateID() string { return e.AssignmentsID }
func (e SeatAssignmentUpdated) EventType() string   { return EventTypeSeatAssignmentUpdated }
