package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository создаёт PostgreSQL-реализацию PaymentRepository.
func NewPaymentRepository(store *Store) domain.PaymentRepository {
	return &paymentRepository{db: store.DB()}
}

func (r *paymentRepository) Get(id string) (domain.Payment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		payment domain.Payment
		status  string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, conference_id, amount_minor, status,
		       version, created_at, updated_at
		FROM payments
		WHERE id = $1
	`, id).Scan(
		&payment.ID, &payment.OrderID, &payment.ConferenceID,
		&payment.AmountMinor, &status,
		&payment.Version, &payment.CreatedAt, &payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Payment{}, domain.ErrAggregateNotFound
		}
		return domain.Payment{}, fmt.Errorf("select payment: %w", err)
	}
	payment.Status = domain.PaymentStatus(status)

	return payment, nil
}

func (r *paymentRepository) Save(payment domain.Payment) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if payment.Version == 0 {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO payments (
				id, order_id, conference_id, amount_minor, status,
				version, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,1,$6,$7)
		`,
			payment.ID, payment.OrderID, payment.ConferenceID,
			payment.AmountMinor, string(payment.Status),
			payment.CreatedAt, payment.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrVersionConflict
			}
			return fmt.Errorf("insert payment: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET order_id = $1,
		    conference_id = $2,
		    amount_minor = $3,
		    status = $4,
		    version = version + 1,
		    updated_at = $5
		WHERE id = $6
		  AND version = $7
	`,
		payment.OrderID, payment.ConferenceID, payment.AmountMinor,
		string(payment.Status), payment.UpdatedAt,
		payment.ID, payment.Version,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
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

var _ domain.PaymentRepository = (*paymentRepository)(nil)
