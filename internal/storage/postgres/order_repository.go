package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/crs/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		order      domain.Order
		seats      []byte
		registrant []byte
		expiration sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, conference_id, seats, confirmed, expired, registrant,
		       total_minor, access_code, reservation_auto_expiration,
		       version, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.ConferenceID, &seats, &order.Confirmed, &order.Expired,
		&registrant, &order.TotalMinor, &order.AccessCode, &expiration,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrAggregateNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	if err := unmarshalColumn(seats, &order.Seats, "order seats"); err != nil {
		return domain.Order{}, err
	}
	if err := unmarshalColumn(registrant, &order.Registrant, "order registrant"); err != nil {
		return domain.Order{}, err
	}
	order.ReservationAutoExpiration = fromNullableTime(expiration)

	return order, nil
}

// Save сохраняет заказ с проверкой версии. Новый заказ обязан приходить с
// Version=0 и записывается с версией 1, как и в in-memory реализации.
func (r *orderRepository) Save(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	seats, err := marshalColumn(order.Seats, "order seats")
	if err != nil {
		return err
	}
	registrant, err := marshalColumn(order.Registrant, "order registrant")
	if err != nil {
		return err
	}

	if order.Version == 0 {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO orders (
				id, conference_id, seats, confirmed, expired, registrant,
				total_minor, access_code, reservation_auto_expiration,
				version, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,1,$10,$11)
		`,
			order.ID, order.ConferenceID, seats, order.Confirmed, order.Expired,
			registrant, order.TotalMinor, order.AccessCode,
			nullableTime(order.ReservationAutoExpiration),
			order.CreatedAt, order.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrVersionConflict
			}
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET conference_id = $1,
		    seats = $2,
		    confirmed = $3,
		    expired = $4,
		    registrant = $5,
		    total_minor = $6,
		    access_code = $7,
		    reservation_auto_expiration = $8,
		    version = version + 1,
		    updated_at = $9
		WHERE id = $10
		  AND version = $11
	`,
		order.ConferenceID, seats, order.Confirmed, order.Expired, registrant,
		order.TotalMinor, order.AccessCode,
		nullableTime(order.ReservationAutoExpiration),
		order.UpdatedAt, order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
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

var _ domain.OrderRepository = (*orderRepository)(nil)
