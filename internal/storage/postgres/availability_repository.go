package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

type availabilityRepository struct {
	db *sql.DB
}

// NewAvailabilityRepository создаёт PostgreSQL-реализацию AvailabilityRepository.
func NewAvailabilityRepository(store *Store) domain.AvailabilityRepository {
	return &availabilityRepository{db: store.DB()}
}

func (r *availabilityRepository) Get(conferenceID string) (domain.SeatsAvailability, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		availability domain.SeatsAvailability
		seats        []byte
		pending      []byte
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, seats, pending_reservations, version, created_at, updated_at
		FROM seats_availability
		WHERE id = $1
	`, conferenceID).Scan(
		&availability.ID, &seats, &pending,
		&availability.Version, &availability.CreatedAt, &availability.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SeatsAvailability{}, domain.ErrAggregateNotFound
		}
		return domain.SeatsAvailability{}, fmt.Errorf("select seats availability: %w", err)
	}

	if err := unmarshalColumn(seats, &availability.Seats, "availability seats"); err != nil {
		return domain.SeatsAvailability{}, err
	}
	if err := unmarshalColumn(pending, &availability.PendingReservations, "pending reservations"); err != nil {
		return domain.SeatsAvailability{}, err
	}
	if availability.PendingReservations == nil {
		availability.PendingReservations = make(map[string][]domain.SeatQuantity)
	}

	return availability, nil
}

func (r *availabilityRepository) Save(availability domain.SeatsAvailability) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	seats, err := marshalColumn(availability.Seats, "availability seats")
	if err != nil {
		return err
	}
	pending, err := marshalColumn(availability.PendingReservations, "pending reservations")
	if err != nil {
		return err
	}

	if availability.Version == 0 {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO seats_availability (
				id, seats, pending_reservations, version, created_at, updated_at
			) VALUES ($1,$2,$3,1,$4,$5)
		`,
			availability.ID, seats, pending,
			availability.CreatedAt, availability.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrVersionConflict
			}
			return fmt.Errorf("insert seats availability: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE seats_availability
		SET seats = $1,
		    pending_reservations = $2,
		    version = version + 1,
		    updated_at = $3
		WHERE id = $4
		  AND version = $5
	`,
		seats, pending, availability.UpdatedAt,
		availability.ID, availability.Version,
	)
	if err != nil {
		return fmt.Errorf("update seats availability: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

var _ domain.AvailabilityRepository = (*availabilityRepository)(nil)
