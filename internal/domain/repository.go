package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Get возвращает заказ по идентификатору или ErrAggregateNotFound.
	Get(id string) (Order, error)
	// Save сохраняет заказ с учётом optimistic locking: новый заказ
	// сохраняется с Version=0, конфликт версий — ErrVersionConflict.
	Save(order Order) error
}

// AvailabilityRepository хранит леджеры доступности мест по конференциям.
type AvailabilityRepository interface {
	Get(conferenceID string) (SeatsAvailability, error)
	Save(availability SeatsAvailability) error
}

// ProcessRepository хранит состояние регистрационных саг.
type ProcessRepository interface {
	Get(id string) (RegistrationProcess, error)
	Save(process RegistrationProcess) error
}

// PaymentRepository хранит платёжные агрегаты.
type PaymentRepository interface {
	Get(id string) (Payment, error)
	Save(payment Payment) error
}

// AssignmentsRepository хранит карты рассадки.
type AssignmentsRepository interface {
	Get(id string) (SeatAssignments, error)
	Save(assignments SeatAssignments) error
}
