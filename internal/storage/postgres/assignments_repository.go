package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

type assignmentsRepository struct {
	db *sql.DB
}

// NewAssignmentsRepository создаёт PostgreSQL-реализацию AssignmentsRepository.
func NewAssignmentsRepository(store *Store) domain.AssignmentsRepository {
	return &assignmentsRepository{db: store.DB()}
}

func (r *assignmentsRepository) Get(id string) (domain.SeatAssignments, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		assignments domain.SeatAssignments
		seats       []byte
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, seats, version, created_at, updated_at
		FROM seat_assignments
		WHERE id = $1
	`, id).Scan(
		&assignments.ID, &assignments.OrderID, &seats,
		&assignments.Version, &assignments.CreatedAt, &assignments.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SeatAssignments{}, domain.ErrAggregateNotFound
		}
		return domain.SeatAssignments{}, fmt.Errorf("select seat assignments: %w", err)
	}

	if err := unmarshalColumn(seats, &assignments.Seats, "assignment seats"); err != nil {
		return domain.SeatAssignments{}, err
	}
	if assignments.Seats == nil {
		assignments.Seats = make(map[int]domain.SeatAssignment)
	}

	return assignments, nil
}

func (r *assignmentsRepository) Save(assignments domain.SeatAssignments) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	seats, err := marshalColumn(assignments.Seats, "assignment seats")
	if err != nil {
		return err
	}

	if assignments.Version == 0 {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO seat_assignments (
				id, order_id, seats, version, created_at, updated_at
			) VALUES ($1,$2,$3,1,$4,$5)
		`,
			assignments.ID, assignments.OrderID, seats,
			assignments.CreatedAt, assignments.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrVersionConflict
			}
			return fmt.Errorf("insert seat assignments: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE seat_assignments
		SET order_id = $1,
		    seats = $2,
		    version = version + 1,
		    updated_at = $3
		WHERE id = $4
		  AND version = $5
	`,
		assignments.OrderID, seats, assignments.UpdatedAt,
		assignments.ID, assignments.Version,
	)
	if err != nil {
		return fmt.Errorf("update seat assignments: %w", err)
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

var _ domain.AssignmentsRepository = (*assignmentsRepository)(nil)
