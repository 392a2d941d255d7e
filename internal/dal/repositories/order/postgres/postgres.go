package postgresrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/postgres"
	"github.com/yashraj9595/zyntherraa/order/internal/service/errs"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/order"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/orderitem"
	"github.com/yashraj9595/zyntherraa/order/internal/service/models/payment"
)

const ordersTable = "orders"

var orderColumns = []string{
	"id",
	"user_ref",
	"items",
	"shipping_address",
	"payment_method",
	"payment_result",
	"refund",
	"payment_attempts",
	"items_price",
	"tax_price",
	"shipping_price",
	"total_price",
	"is_paid",
	"paid_at",
	"is_delivered",
	"delivered_at",
	"status",
	"tracking_number",
	"tracking_history",
	"carrier",
	"estimated_delivery",
	"version",
	"created_at",
	"updated_at",
}

// OrderDal represents order data access layer model
type OrderDal struct {
	Id                string          `db:"id"`
	UserRef           string          `db:"user_ref"`
	Items             []byte          `db:"items"`
	ShippingAddress   []byte          `db:"shipping_address"`
	PaymentMethod     string          `db:"payment_method"`
	PaymentResult     []byte          `db:"payment_result"`
	Refund            []byte          `db:"refund"`
	PaymentAttempts   int             `db:"payment_attempts"`
	ItemsPrice        decimal.Decimal `db:"items_price"`
	TaxPrice          decimal.Decimal `db:"tax_price"`
	ShippingPrice     decimal.Decimal `db:"shipping_price"`
	TotalPrice        decimal.Decimal `db:"total_price"`
	IsPaid            bool            `db:"is_paid"`
	PaidAt            *time.Time      `db:"paid_at"`
	IsDelivered       bool            `db:"is_delivered"`
	DeliveredAt       *time.Time      `db:"delivered_at"`
	Status            string          `db:"status"`
	TrackingNumber    *string         `db:"tracking_number"`
	TrackingHistory   []byte          `db:"tracking_history"`
	Carrier           string          `db:"carrier"`
	EstimatedDelivery *time.Time      `db:"estimated_delivery"`
	Version           int64           `db:"version"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model
func (o *OrderDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	m := &order.Order{
		ID:            o.Id,
		UserRef:       o.UserRef,
		PaymentMethod: o.PaymentMethod,
		PriceBreakdown: order.PriceBreakdown{
			ItemsPrice:    o.ItemsPrice,
			TaxPrice:      o.TaxPrice,
			ShippingPrice: o.ShippingPrice,
			TotalPrice:    o.TotalPrice,
		},
		PaymentAttempts:   o.PaymentAttempts,
		IsPaid:            o.IsPaid,
		PaidAt:            o.PaidAt,
		IsDelivered:       o.IsDelivered,
		DeliveredAt:       o.DeliveredAt,
		Status:            status,
		Carrier:           o.Carrier,
		EstimatedDelivery: o.EstimatedDelivery,
		Version:           o.Version,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if o.TrackingNumber != nil {
		m.TrackingNumber = *o.TrackingNumber
	}

	if err := json.Unmarshal(o.Items, &m.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	if err := json.Unmarshal(o.ShippingAddress, &m.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode shipping address: %w", err)
	}
	if len(o.PaymentResult) > 0 {
		m.PaymentResult = &payment.Result{}
		if err := json.Unmarshal(o.PaymentResult, m.PaymentResult); err != nil {
			return nil, fmt.Errorf("failed to decode payment result: %w", err)
		}
	}
	if len(o.Refund) > 0 {
		m.Refund = &payment.Refund{}
		if err := json.Unmarshal(o.Refund, m.Refund); err != nil {
			return nil, fmt.Errorf("failed to decode refund: %w", err)
		}
	}
	if len(o.TrackingHistory) > 0 {
		if err := json.Unmarshal(o.TrackingHistory, &m.TrackingHistory); err != nil {
			return nil, fmt.Errorf("failed to decode tracking history: %w", err)
		}
	}
	if m.Items == nil {
		m.Items = []orderitem.OrderItem{}
	}

	return m, nil
}

// OrderDalFromModel converts service layer Order model to OrderDal
func OrderDalFromModel(o *order.Order) (*OrderDal, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	address, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to encode shipping address: %w", err)
	}
	history, err := json.Marshal(o.TrackingHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tracking history: %w", err)
	}

	dal := &OrderDal{
		Id:                o.ID,
		UserRef:           o.UserRef,
		Items:             items,
		ShippingAddress:   address,
		PaymentMethod:     o.PaymentMethod,
		PaymentAttempts:   o.PaymentAttempts,
		ItemsPrice:        o.ItemsPrice,
		TaxPrice:          o.TaxPrice,
		ShippingPrice:     o.ShippingPrice,
		TotalPrice:        o.TotalPrice,
		IsPaid:            o.IsPaid,
		PaidAt:            o.PaidAt,
		IsDelivered:       o.IsDelivered,
		DeliveredAt:       o.DeliveredAt,
		Status:            o.Status.String(),
		TrackingHistory:   history,
		Carrier:           o.Carrier,
		EstimatedDelivery: o.EstimatedDelivery,
		Version:           o.Version,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if o.TrackingNumber != "" {
		dal.TrackingNumber = &o.TrackingNumber
	}
	if o.PaymentResult != nil {
		if dal.PaymentResult, err = json.Marshal(o.PaymentResult); err != nil {
			return nil, fmt.Errorf("failed to encode payment result: %w", err)
		}
	}
	if o.Refund != nil {
		if dal.Refund, err = json.Marshal(o.Refund); err != nil {
			return nil, fmt.Errorf("failed to encode refund: %w", err)
		}
	}

	return dal, nil
}

func (o *OrderDal) values() []any {
	return []any{
		o.Id,
		o.UserRef,
		o.Items,
		o.ShippingAddress,
		o.PaymentMethod,
		o.PaymentResult,
		o.Refund,
		o.PaymentAttempts,
		o.ItemsPrice,
		o.TaxPrice,
		o.ShippingPrice,
		o.TotalPrice,
		o.IsPaid,
		o.PaidAt,
		o.IsDelivered,
		o.DeliveredAt,
		o.Status,
		o.TrackingNumber,
		o.TrackingHistory,
		o.Carrier,
		o.EstimatedDelivery,
		o.Version,
		o.CreatedAt,
		o.UpdatedAt,
	}
}

func (o *OrderDal) scanTargets() []any {
	return []any{
		&o.Id,
		&o.UserRef,
		&o.Items,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&o.PaymentResult,
		&o.Refund,
		&o.PaymentAttempts,
		&o.ItemsPrice,
		&o.TaxPrice,
		&o.ShippingPrice,
		&o.TotalPrice,
		&o.IsPaid,
		&o.PaidAt,
		&o.IsDelivered,
		&o.DeliveredAt,
		&o.Status,
		&o.TrackingNumber,
		&o.TrackingHistory,
		&o.Carrier,
		&o.EstimatedDelivery,
		&o.Version,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

// PostgresOrderRepository stores order aggregates in a single row with JSONB sub-documents.
type PostgresOrderRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Insert stores a new order. A taken id or tracking number yields errs.ErrDuplicateKey.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o *order.Order) error {
	dal, err := OrderDalFromModel(o)
	if err != nil {
		return err
	}

	query, args, err := sq.Insert(ordersTable).
		Columns(orderColumns...).
		Values(dal.values()...).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%w: order %s: %v", errs.ErrDuplicateKey, o.ID, err)
		}

		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// Get loads a single order by id.
func (r *PostgresOrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From(ordersTable).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	if err := r.conn.QueryRow(ctx, query, args...).Scan(dal.scanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.NotFoundf("order %s not found", id)
		}

		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return dal.ToModel()
}

// Update overwrites the stored order when its version still equals expectedVersion.
func (r *PostgresOrderRepository) Update(ctx context.Context, o *order.Order, expectedVersion int64) error {
	dal, err := OrderDalFromModel(o)
	if err != nil {
		return err
	}

	set := make(map[string]any, len(orderColumns))
	values := dal.values()
	for i, col := range orderColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		set[col] = values[i]
	}

	query, args, err := sq.Update(ordersTable).
		SetMap(set).
		Where(sq.Eq{"id": o.ID, "version": expectedVersion}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%w: tracking number %s: %v", errs.ErrDuplicateKey, o.TrackingNumber, err)
		}

		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	exists, err := r.exists(ctx, o.ID)
	if err != nil {
		return err
	}
	if !exists {
		return errs.NotFoundf("order %s not found", o.ID)
	}

	return fmt.Errorf("%w: order %s is no longer at version %d", errs.ErrConcurrentModification, o.ID, expectedVersion)
}

func (r *PostgresOrderRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}

	return exists, nil
}

// Query returns orders matching filter, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).
		From(ordersTable).
		OrderBy("created_at DESC", "id").
		PlaceholderFormat(sq.Dollar)

	if filter != nil {
		if len(filter.Ids) > 0 {
			builder = builder.Where(sq.Eq{"id": filter.Ids})
		}
		if len(filter.UserRefs) > 0 {
			builder = builder.Where(sq.Eq{"user_ref": filter.UserRefs})
		}
		if len(filter.Statuses) > 0 {
			statuses := make([]string, len(filter.Statuses))
			for i, s := range filter.Statuses {
				statuses[i] = s.String()
			}
			builder = builder.Where(sq.Eq{"status": statuses})
		}
		if filter.IsPaid != nil {
			builder = builder.Where(sq.Eq{"is_paid": *filter.IsPaid})
		}
		if filter.IsDelivered != nil {
			builder = builder.Where(sq.Eq{"is_delivered": *filter.IsDelivered})
		}
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Delete removes an order.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	query, args, err := sq.Delete(ordersTable).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NotFoundf("order %s not found", id)
	}

	return nil
}
