package domain

import (
	"fmt"
	"time"
)

// PaymentStatus описывает строго поступательный жизненный цикл платежа:
// NOT_STARTED → INITIALIZED → {SUCCEEDED | FAILED | CANCELED}.
type PaymentStatus string

const (
	PaymentStatusNotStarted  PaymentStatus = "not_started"
	PaymentStatusInitialized PaymentStatus = "initialized"
	PaymentStatusSucceeded   PaymentStatus = "succeeded"
	PaymentStatusFailed      PaymentStatus = "failed"
	PaymentStatusCanceled    PaymentStatus = "canceled"
)

// Terminal сообщает, зафиксирован ли результат платежа.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCanceled:
		return true
	default:
		return false
	}
}

// Payment описывает платёж за заказ у стороннего процессора.
type Payment struct {
	ID           string
	OrderID      string
	ConferenceID string
	AmountMinor  int64
	Status       PaymentStatus
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsNew сообщает, что платёж ещё не создавался.
func (p Payment) IsNew() bool { return p.ID == "" }

// HandleCommand проверяет допустимость перехода и возвращает события.
// Нарушения порядка — различимые именованные ошибки, результат никогда
// не перезаписывается молча.
func (p Payment) HandleCommand(cmd Command, env CommandEnv) ([]Event, error) {
	switch c := cmd.(type) {
	case InitializePayment:
		return p.initialize(c)
	case CompletePayment:
		return p.complete(c)
	case CancelPayment:
		return p.cancel(c)
	case RejectPayment:
		return p.rejectResult(c)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.CommandType())
	}
}

func (p Payment) initialize(c InitializePayment) ([]Event, error) {
	if c.PaymentID == "" {
		return nil, ErrPaymentIDRequired
	}
	if c.OrderID == "" {
		return nil, ErrOrderIDRequired
	}
	if !p.IsNew() && p.Status != PaymentStatusNotStarted {
		return nil, fmt.Errorf("%w: %s", ErrSecondInitializationAttempt, c.PaymentID)
	}
	return []Event{PaymentInitiated{
		PaymentID:   c.PaymentID,
		OrderID:     c.OrderID,
		AmountMinor: c.AmountMinor,
	}}, nil
}

func (p Payment) complete(c CompletePayment) ([]Event, error) {
	if err := p.assertAwaitingResult(); err != nil {
		return nil, err
	}
	return []Event{PaymentCompleted{PaymentID: p.ID, OrderID: p.OrderID}}, nil
}

func (p Payment) cancel(c CancelPayment) ([]Event, error) {
	if err := p.assertAwaitingResult(); err != nil {
		return nil, err
	}
	return []Event{PaymentCanceled{PaymentID: p.ID, OrderID: p.OrderID}}, nil
}

func (p Payment) rejectResult(c RejectPayment) ([]Event, error) {
	if err := p.assertAwaitingResult(); err != nil {
		return nil, err
	}
	return []Event{PaymentRejected{PaymentID: p.ID, OrderID: p.OrderID}}, nil
}

func (p Payment) assertAwaitingResult() error {
	if p.IsNew() || p.Status == PaymentStatusNotStarted {
		return fmt.Errorf("%w: %s", ErrPaymentNotInitialized, p.ID)
	}
	if p.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrAmbiguousPaymentResult, p.ID, p.Status)
	}
	return nil
}

// Apply возвращает новое состояние платежа после события.
func (p Payment) Apply(event Event, now time.Time) Payment {
	next := p
	next.UpdatedAt = now

	switch e := event.(type) {
	case PaymentInitiated:
		next.ID = e.PaymentID
		next.OrderID = e.OrderID
		next.AmountMinor = e.AmountMinor
		next.Status = PaymentStatusInitialized
		next.CreatedAt = now
	case PaymentCompleted:
		next.Status = PaymentStatusSucceeded
	case PaymentCanceled:
		next.Status = PaymentStatusCanceled
	case PaymentRejected:
		next.Status = PaymentStatusFailed
	}
	return next
}
