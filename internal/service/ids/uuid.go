package ids

import (
	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

// UUIDGenerator выдаёт случайные идентификаторы UUID v4.
type UUIDGenerator struct{}

// NewID возвращает новый идентификатор.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

var _ domain.IDGenerator = UUIDGenerator{}
