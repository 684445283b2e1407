package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

type processRepository struct {
	db *sql.DB
}

// NewProcessRepository создаёт PostgreSQL-реализацию ProcessRepository.
func NewProcessRepository(store *Store) domain.ProcessRepository {
	return &processRepository{db: store.DB()}
}

func (r *processRepository) Get(id string) (domain.RegistrationProcess, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		proc       domain.RegistrationProcess
		seats      []byte
		state      string
		expiration sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, conference_id, seats_requested,
		       reservation_auto_expiration, state, rejected, expiration_token,
		       version, created_at, updated_at
		FROM registration_processes
		WHERE id = $1
	`, id).Scan(
		&proc.ID, &proc.OrderID, &proc.ConferenceID, &seats,
		&expiration, &state, &proc.Rejected, &proc.ExpirationToken,
		&proc.Version, &proc.CreatedAt, &proc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RegistrationProcess{}, domain.ErrAggregateNotFound
		}
		return domain.RegistrationProcess{}, fmt.Errorf("select registration process: %w", err)
	}

	if err := unmarshalColumn(seats, &proc.SeatsRequested, "seats requested"); err != nil {
		return domain.RegistrationProcess{}, err
	}
	proc.State = domain.ProcessState(state)
	proc.ReservationAutoExpiration = fromNullableTime(expiration)

	return proc, nil
}

func (r *processRepository) Save(proc domain.RegistrationProcess) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	seats, err := marshalColumn(proc.SeatsRequested, "seats requested")
	if err != nil {
		return err
	}

	if proc.Version == 0 {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO registration_processes (
				id, order_id, conference_id, seats_requested,
				reservation_auto_expiration, state, rejected, expiration_token,
				version, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,1,$9,$10)
		`,
			proc.ID, proc.OrderID, proc.ConferenceID, seats,
			nullableTime(proc.ReservationAutoExpiration), string(proc.State),
			proc.Rejected, proc.ExpirationToken,
			proc.CreatedAt, proc.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrVersionConflict
			}
			return fmt.Errorf("insert registration process: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE registration_processes
		SET order_id = $1,
		    conference_id = $2,
		    seats_requested = $3,
		    reservation_auto_expiration = $4,
		    state = $5,
		    rejected = $6,
		    expiration_token = $7,
		    version = version + 1,
		    updated_at = $8
		WHERE id = $9
		  AND version = $10
	`,
		proc.OrderID, proc.ConferenceID, seats,
		nullableTime(proc.ReservationAutoExpiration), string(proc.State),
		proc.Rejected, proc.ExpirationToken,
		proc.UpdatedAt, proc.ID, proc.Version,
	)
	if err != nil {
		return fmt.Errorf("update registration process: %w", err)
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

var _ domain.ProcessRepository = (*processRepository)(nil)
