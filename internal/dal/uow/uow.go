package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/interfaces/iorderrepo"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/interfaces/ioutboxrepo"
	"github.com/yashraj9595/zyntherraa/order/internal/dal/postgres"
	orderrepo "github.com/yashraj9595/zyntherraa/order/internal/dal/repositories/order/postgres"
	outboxrepo "github.com/yashraj9595/zyntherraa/order/internal/dal/repositories/outbox/postgres"
)

type unitOfWork struct {
	client     *postgres.Client
	tx         pgx.Tx
	orderRepo  iorderrepo.IOrderRepository
	outboxRepo ioutboxrepo.IOutboxRepository
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

// NewUnitOfWork returns a unit of work whose repositories use the pool until Begin is called.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	return &unitOfWork{
		client:     client,
		orderRepo:  orderrepo.NewPostgresOrderRepository(client.Pool()),
		outboxRepo: outboxrepo.NewOutboxRepository(client.Pool()),
	}
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	// Rebind repositories to the transaction
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Rollback is a no-op after a successful Commit.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}
