package repository

import (
	"context"
	"errors"

	"stewardflow/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

// WithTx runs fn inside a transaction carried on the context. Nested
// calls join the outer transaction.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return infra.WrapRepoErr("failed to begin transaction", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// querier routes statements through the context transaction when one
// is present, the pool otherwise.
type querier struct {
	pool *pgxpool.Pool
}

func (q querier) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return q.pool.Exec(ctx, sql, args...)
}

func (q querier) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return q.pool.Query(ctx, sql, args...)
}

func (q querier) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return q.pool.QueryRow(ctx, sql, args...)
}

// Postgres error codes the engine reacts to. 23P01 is the exclusion
// constraint on active reservation intervals, the storage-level
// backstop for the check-then-insert race.
const (
	pgCodeUniqueViolation    = "23505"
	pgCodeForeignKeyViolated = "23503"
	pgCodeExclusionViolation = "23P01"
)

// ClassifyPgErr maps a pgx error to a repository error kind.
func ClassifyPgErr(err error) infra.RepositoryErrorKind {
	if errors.Is(err, pgx.ErrNoRows) {
		return infra.KindNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeUniqueViolation:
			return infra.KindDuplicateKey
		case pgCodeForeignKeyViolated:
			return infra.KindForeignKeyViolated
		case pgCodeExclusionViolation:
			return infra.KindConflict
		}
	}
	return infra.KindDBFailure
}

func wrapPgErr(msg string, err error) error {
	return infra.WrapRepoErr(msg, err, ClassifyPgErr(err))
}
