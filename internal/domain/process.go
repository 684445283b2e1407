package domain

import "time"

// ProcessState описывает состояние регистрационной саги.
type ProcessState string

const (
	// ProcessStateNotStarted — сага создана, но резервирование ещё не запрошено.
	ProcessStateNotStarted ProcessState = "not_started"
	// ProcessStateAwaitingReservationConfirmation — резервирование отправлено, ждём ответ леджера.
	ProcessStateAwaitingReservationConfirmation ProcessState = "awaiting_reservation_confirmation"
	// ProcessStateReservationConfirmed — места удержаны полностью, ждём оплату.
	ProcessStateReservationConfirmed ProcessState = "reservation_confirmed"
	// ProcessStatePaymentReceived — оплата получена, сага завершена.
	ProcessStatePaymentReceived ProcessState = "payment_received"
)

// RegistrationProcess — состояние саги, по одному экземпляру на заказ.
// Создаётся лениво на первом OrderPlaced, мутируется только оркестратором,
// никогда не удаляется: терминальные состояния финальны.
type RegistrationProcess struct {
	ID           string
	OrderID      string
	ConferenceID string
	// SeatsRequested — последний запрошенный состав; нужен, чтобы отличить
	// полный результат SeatsReserved от частичного.
	SeatsRequested            []SeatQuantity
	ReservationAutoExpiration time.Time
	State                     ProcessState
	// Rejected — терминальное отклонённое состояние (недобор мест, истечение
	// дедлайна или провал оплаты). Не сбрасывается.
	Rejected bool
	// ExpirationToken — токен отложенной команды ExpireRegistrationProcess.
	ExpirationToken string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DeriveProcessID детерминированно выводит идентификатор саги из заказа.
// ReservationID в этом домене равен OrderID, поэтому события леджера и
// платежей маршрутизируются тем же выводом.
func DeriveProcessID(orderID string) string {
	return "registration-" + orderID
}

// NewRegistrationProcess создаёт сагу в начальном состоянии.
func NewRegistrationProcess(orderID string, now time.Time) RegistrationProcess {
	return RegistrationProcess{
		ID:        DeriveProcessID(orderID),
		OrderID:   orderID,
		State:     ProcessStateNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Completed сообщает, достигла ли сага терминального состояния.
func (p RegistrationProcess) Completed() bool {
	return p.Rejected || p.State == ProcessStatePaymentReceived
}
