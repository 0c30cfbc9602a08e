package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Activos-api/internal/application/acta"
	"github.com/jhoicas/Activos-api/internal/application/inventory"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner y acta.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ acta.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos de inventario atados a la tx
// y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewItemRepository(tx), NewMovementRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunActa inicia una transacción con los repos que abarca una transición de
// acta (documento + inventario + token + outbox). Commit si todo ok, Rollback
// si algo falla.
func (r *TxRunner) RunActa(ctx context.Context, fn func(
	actaRepo repository.ActaRepository,
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	tokenRepo repository.TokenRepository,
	outboxRepo repository.OutboxRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(
		NewActaRepository(tx),
		NewItemRepository(tx),
		NewMovementRepository(tx),
		NewTokenRepository(tx),
		NewOutboxRepository(tx),
	)
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
