package domain

// Command описывает намерение изменить состояние конкретного агрегата.
// AggregateID указывает экземпляр-владелец, CommandType используется для
// явной диспетчеризации по таблице обработчиков (без reflection).
type Command interface {
	AggregateID() string
	CommandType() string
}

// Типы команд для маршрутизации на шине.
const (
	CommandTypeRegisterToConference     = "RegisterToConference"
	CommandTypeMarkSeatsAsReserved      = "MarkSeatsAsReserved"
	CommandTypeRejectOrder              = "RejectOrder"
	CommandTypeConfirmOrder             = "ConfirmOrder"
	CommandTypeAssignRegistrantDetails  = "AssignRegistrantDetails"
	CommandTypeMakeSeatReservation      = "MakeSeatReservation"
	CommandTypeCommitSeatReservation    = "CommitSeatReservation"
	CommandTypeCancelSeatReservation    = "CancelSeatReservation"
	CommandTypeAddSeats                 = "AddSeats"
	CommandTypeRemoveSeats              = "RemoveSeats"
	CommandTypeExpireRegistrationProc   = "ExpireRegistrationProcess"
	CommandTypeInitiatePayment          = "InitiateThirdPartyProcessorPayment"
	CommandTypeInitializePayment        = "InitializeThirdPartyProcessorPayment"
	CommandTypeCompletePayment          = "CompleteThirdPartyProcessorPayment"
	CommandTypeCancelPayment            = "CancelThirdPartyProcessorPayment"
	CommandTypeRejectPayment            = "RejectThirdPartyProcessorPayment"
	CommandTypeCreateSeatAssignments    = "CreateSeatAssignments"
	CommandTypeAssignSeat               = "AssignSeat"
	CommandTypeUnassignSeat             = "UnassignSeat"
	CommandTypeUpdateSeatAssignment     = "UpdateSeatAssignment"
)

// RegisterToConference создаёт новый заказ или заменяет состав мест существующего.
type RegisterToConference struct {
	OrderID      string         `json:"order_id"`
	ConferenceID string         `json:"conference_id"`
	Seats        []SeatQuantity `json:"seats"`
}

func (c RegisterToConference) AggregateID() string { return c.OrderID }
func (c RegisterToConference) CommandType() string { return CommandTypeRegisterToConference }

// MarkSeatsAsReserved сообщает заказу фактически зарезервированные количества.
type MarkSeatsAsReserved struct {
	OrderID string         `json:"order_id"`
	Seats   []SeatQuantity `json:"seats"`
}

func (c MarkSeatsAsReserved) AggregateID() string { return c.OrderID }
func (c MarkSeatsAsReserved) CommandType() string { return CommandTypeMarkSeatsAsReserved }

// RejectOrder помечает заказ как истёкший (компенсация саги).
type RejectOrder struct {
	OrderID string `json:"order_id"`
}

func (c RejectOrder) AggregateID() string { return c.OrderID }
func (c RejectOrder) CommandType() string { return CommandTypeRejectOrder }

// ConfirmOrder финализирует заказ после успешной оплаты.
type ConfirmOrder struct {
	OrderID string `json:"order_id"`
}

func (c ConfirmOrder) AggregateID() string { return c.OrderID }
func (c ConfirmOrder) CommandType() string { return CommandTypeConfirmOrder }

// AssignRegistrantDetails прикрепляет персональные данные регистранта к заказу.
type AssignRegistrantDetails struct {
	OrderID   string `json:"order_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (c AssignRegistrantDetails) AggregateID() string { return c.OrderID }
func (c AssignRegistrantDetails) CommandType() string { return CommandTypeAssignRegistrantDetails }

// MakeSeatReservation запрашивает резервирование мест в леджере конференции.
// ReservationID в этом домене равен идентификатору заказа.
type MakeSeatReservation struct {
	ReservationID string         `json:"reservation_id"`
	ConferenceID  string         `json:"conference_id"`
	Seats         []SeatQuantity `json:"seats"`
}

func (c MakeSeatReservation) AggregateID() string { return c.ConferenceID }
func (c MakeSeatReservation) CommandType() string { return CommandTypeMakeSeatReservation }

// CommitSeatReservation окончательно списывает удерживаемые места.
type CommitSeatReservation struct {
	ReservationID string `json:"reservation_id"`
	ConferenceID  string `json:"conference_id"`
}

func (c CommitSeatReservation) AggregateID() string { return c.ConferenceID }
func (c CommitSeatReservation) CommandType() string { return CommandTypeCommitSeatReservation }

// CancelSeatReservation возвращает удерживаемые места в доступные.
type CancelSeatReservation struct {
	ReservationID string `json:"reservation_id"`
	ConferenceID  string `json:"conference_id"`
}

func (c CancelSeatReservation) AggregateID() string { return c.ConferenceID }
func (c CancelSeatReservation) CommandType() string { return CommandTypeCancelSeatReservation }

// AddSeats увеличивает вместимость типа места (публикация/изменение квоты).
type AddSeats struct {
	ConferenceID string `json:"conference_id"`
	SeatTypeID   string `json:"seat_type_id"`
	Quantity     int32  `json:"quantity"`
}

func (c AddSeats) AggregateID() string { return c.ConferenceID }
func (c AddSeats) CommandType() string { return CommandTypeAddSeats }

// RemoveSeats уменьшает вместимость типа места; итог не опускается ниже нуля.
type RemoveSeats struct {
	ConferenceID string `json:"conference_id"`
	SeatTypeID   string `json:"seat_type_id"`
	Quantity     int32  `json:"quantity"`
}

func (c RemoveSeats) AggregateID() string { return c.ConferenceID }
func (c RemoveSeats) CommandType() string { return CommandTypeRemoveSeats }

// ExpireRegistrationProcess — отложенная команда, которую сага планирует себе
// сама на момент истечения резервирования.
type ExpireRegistrationProcess struct {
	ProcessID string `json:"process_id"`
}

func (c ExpireRegistrationProcess) AggregateID() string { return c.ProcessID }
func (c ExpireRegistrationProcess) CommandType() string { return CommandTypeExpireRegistrationProc }

// InitiatePayment поручает платёжному процесс-менеджеру создать платёж
// на сумму заказа.
type InitiatePayment struct {
	PaymentID    string `json:"payment_id"`
	OrderID      string `json:"order_id"`
	ConferenceID string `json:"conference_id"`
	AmountMinor  int64  `json:"amount_minor"`
}

func (c InitiatePayment) AggregateID() string { return c.PaymentID }
func (c InitiatePayment) CommandType() string { return CommandTypeInitiatePayment }

// InitializePayment инициализирует платёж у стороннего процессора.
type InitializePayment struct {
	PaymentID    string `json:"payment_id"`
	OrderID      string `json:"order_id"`
	ConferenceID string `json:"conference_id"`
	AmountMinor  int64  `json:"amount_minor"`
}

func (c InitializePayment) AggregateID() string { return c.PaymentID }
func (c InitializePayment) CommandType() string { return CommandTypeInitializePayment }

// CompletePayment фиксирует успешный результат от процессора.
type CompletePayment struct {
	PaymentID string `json:"payment_id"`
}

func (c CompletePayment) AggregateID() string { return c.PaymentID }
func (c CompletePayment) CommandType() string { return CommandTypeCompletePayment }

// CancelPayment фиксирует отмену платежа до его завершения.
type CancelPayment struct {
	PaymentID string `json:"payment_id"`
}

func (c CancelPayment) AggregateID() string { return c.PaymentID }
func (c CancelPayment) CommandType() string { return CommandTypeCancelPayment }

// RejectPayment фиксирует отклонение платежа процессором.
type RejectPayment struct {
	PaymentID string `json:"payment_id"`
}

func (c RejectPayment) AggregateID() string { return c.PaymentID }
func (c RejectPayment) CommandType() string { return CommandTypeRejectPayment }

// CreateSeatAssignments создаёт карту рассадки под финализированный заказ.
type CreateSeatAssignments struct {
	AssignmentsID string         `json:"assignments_id"`
	OrderID       string         `json:"order_id"`
	Seats         []SeatQuantity `json:"seats"`
}

func (c CreateSeatAssignments) AggregateID() string { return c.AssignmentsID }
func (c CreateSeatAssignments) CommandType() string { return CommandTypeCreateSeatAssignments }

// AssignSeat прикрепляет участника к позиции рассадки.
type AssignSeat struct {
	AssignmentsID string       `json:"assignments_id"`
	Position      int          `json:"position"`
	Attendee      PersonalInfo `json:"attendee"`
}

func (c AssignSeat) AggregateID() string { return c.AssignmentsID }
func (c AssignSeat) CommandType() string { return CommandTypeAssignSeat }

// UnassignSeat освобождает позицию рассадки.
type UnassignSeat struct {
	AssignmentsID string `json:"assignments_id"`
	Position      int    `json:"position"`
}

func (c UnassignSeat) AggregateID() string { return c.AssignmentsID }
func (c UnassignSeat) CommandType() string { return CommandTypeUnassignSeat }

// UpdateSeatAssignment меняет данные участника на уже занятой позиции.
type UpdateSeatAssignment struct {
	AssignmentsID string       `json:"assignments_id"`
	Position      int          `json:"position"`
	Attendee      PersonalInfo `json:"attendee"`
}

func (c UpdateSeatAssignment) AggregateID() string { return c.AssignmentsID }
func (c UpdateSeatAssignment) CommandType() string { return CommandTypeUpdateSeatAssignment }
