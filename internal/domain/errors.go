package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order_id is required")
	// Ошибка отсутствующего идентификатора конференции.
	ErrConferenceIDRequired = errors.New("conference_id is required")
	// Ошибка отсутствия хотя бы одной позиции мест в команде.
	ErrSeatsRequired = errors.New("command must contain at least one seat item")
	// Ошибка при некорректном количестве мест (<= 0).
	ErrSeatQuantityInvalid = errors.New("seat quantity must be greater than zero")
	// Ошибка отсутствующего идентификатора резервирования.
	ErrReservationIDRequired = errors.New("reservation_id is required")
	// Ошибка отсутствующих данных регистранта.
	ErrRegistrantRequired = errors.New("registrant email and name are required")
	// Ошибка отсутствующего идентификатора платежа.
	ErrPaymentIDRequired = errors.New("payment_id is required")

	// ErrOrderConfirmed возвращается при попытке изменить уже подтверждённый заказ.
	ErrOrderConfirmed = errors.New("order is already confirmed")
	// ErrSeatTypeNotFound возвращается, если тип места отсутствует в леджере доступности.
	ErrSeatTypeNotFound = errors.New("seat type not found")
	// ErrReservationNotFound возвращается при commit/cancel несуществующего резервирования.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrIllegalProcessState сигнализирует, что сага получила событие в недопустимом состоянии.
	ErrIllegalProcessState = errors.New("illegal registration process state")

	// ErrSecondInitializationAttempt — повторная инициализация платежа.
	ErrSecondInitializationAttempt = errors.New("payment already initialized")
	// ErrPaymentNotInitialized — результат платежа получен до инициализации.
	ErrPaymentNotInitialized = errors.New("payment is not initialized")
	// ErrAmbiguousPaymentResult — повторный результат для уже завершённого платежа.
	ErrAmbiguousPaymentResult = errors.New("payment result already recorded")

	// ErrAggregateNotFound возвращается, если агрегат не найден в репозитории.
	ErrAggregateNotFound = errors.New("aggregate not found")
	// ErrVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrVersionConflict = errors.New("aggregate version conflict")
	// ErrUnknownCommand возвращается, если агрегат не умеет обрабатывать команду данного типа.
	ErrUnknownCommand = errors.New("unknown command type")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsIllegalProcessState проверяет, связана ли ошибка с недопустимым состоянием саги.
func IsIllegalProcessState(err error) bool {
	return errors.Is(err, ErrIllegalProcessState)
}

// IsValidation проверяет, относится ли ошибка к синхронной валидации команды.
// Такие ошибки не ретраятся и возвращаются вызывающей стороне как есть.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrOrderIDRequired),
		errors.Is(err, ErrConferenceIDRequired),
		errors.Is(err, ErrSeatsRequired),
		errors.Is(err, ErrSeatQuantityInvalid),
		errors.Is(err, ErrReservationIDRequired),
		errors.Is(err, ErrPaymentIDRequired),
		errors.Is(err, ErrRegistrantRequired):
		return true
	default:
		return false
	}
}
