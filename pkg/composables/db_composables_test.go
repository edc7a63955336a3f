package composables

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type stubTx struct{ name string }

func (stubTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (stubTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (stubTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }

func TestUseTx(t *testing.T) {
	t.Run("returns the bound transaction", func(t *testing.T) {
		ctx := WithTx(context.Background(), stubTx{name: "a"})
		tx, err := UseTx(ctx)
		require.NoError(t, err)
		require.Equal(t, stubTx{name: "a"}, tx)
	})

	t.Run("falls back to pool error when nothing is bound", func(t *testing.T) {
		_, err := UseTx(context.Background())
		require.ErrorIs(t, err, ErrNoPool)
	})
}

func TestUsePool(t *testing.T) {
	_, err := UsePool(context.Background())
	require.ErrorIs(t, err, ErrNoPool)
}

func TestInTxJoinsExistingTransaction(t *testing.T) {
	ctx := WithTx(context.Background(), stubTx{})

	called := false
	err := InTx(ctx, func(inner context.Context) error {
		called = true
		tx, err := UseTx(inner)
		require.NoError(t, err)
		require.Equal(t, stubTx{}, tx)
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestInTxWithoutPoolFails(t *testing.T) {
	err := InTx(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, ErrNoPool)
}

func TestInTxResult(t *testing.T) {
	ctx := WithTx(context.Background(), stubTx{})
	got, err := InTxResult(ctx, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, got)
}
