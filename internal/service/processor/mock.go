package processor

import "github.com/vladislavdragonenkov/crs/internal/domain"

// MockService — конфигурируемая заглушка PaymentProcessor.
type MockService struct {
	ChargeErr error

	ChargeCalls int
}

// NewMockService возвращает mock с успешным сценарием по умолчанию.
func NewMockService() *MockService {
	return &MockService{}
}

// Charge возвращает заранее настроенную ошибку и считает вызовы.
func (m *MockService) Charge(paymentID, orderID string, amountMinor int64) error {
	m.ChargeCalls++
	return m.ChargeErr
}

var _ domain.PaymentProcessor = (*MockService)(nil)
