package pricing

import "github.com/vladislavdragonenkov/crs/internal/domain"

// MockService — конфигурируемая заглушка PricingService. Считает стоимость
// как количество мест, умноженное на фиксированную цену за место.
type MockService struct {
	PerSeatMinor int64
	Err          error

	Calls int
}

// NewMockService возвращает mock с фиксированной ценой по умолчанию.
func NewMockService() *MockService {
	return &MockService{PerSeatMinor: 10000}
}

// CalculateTotalOrderPrice возвращает настроенный результат и считает вызовы.
func (m *MockService) CalculateTotalOrderPrice(conferenceID string, seats []domain.SeatQuantity) (int64, error) {
	m.Calls++
	if m.Err != nil {
		return 0, m.Err
	}
	var total int64
	for _, seat := range seats {
		total += int64(seat.Quantity) * m.PerSeatMinor
	}
	return total, nil
}

var _ domain.PricingService = (*MockService)(nil)
