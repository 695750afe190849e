package middleware

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cateringhub/internal/app/commands"
	"cateringhub/internal/app/uow"
)

type countingUnit struct {
	uow.UnitOfWork
	commits, rollbacks *int
}

func (u countingUnit) Commit(context.Context) error   { *u.commits++; return nil }
func (u countingUnit) Rollback(context.Context) error { *u.rollbacks++; return nil }

type countingFactory struct {
	begins, commits, rollbacks int
}

func (f *countingFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	f.begins++
	return countingUnit{commits: &f.commits, rollbacks: &f.rollbacks}, nil
}

type pingCommand struct{}

func (pingCommand) Key() string { return "test.ping" }

func busReturning(fn func(attempt int) (any, error)) commands.Bus {
	attempt := 0
	return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
		attempt++
		if _, ok := uow.FromContext(ctx); !ok {
			return nil, errors.New("unit missing")
		}
		return fn(attempt)
	})
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	factory := &countingFactory{}
	bus := Transaction(factory, nil)(busReturning(func(int) (any, error) { return "ok", nil }))

	res, err := bus.Dispatch(context.Background(), pingCommand{})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, 1, factory.commits)
	assert.Equal(t, 0, factory.rollbacks)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	factory := &countingFactory{}
	boom := errors.New("boom")
	bus := Transaction(factory, nil)(busReturning(func(int) (any, error) { return nil, boom }))

	_, err := bus.Dispatch(context.Background(), pingCommand{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, factory.begins)
	assert.Equal(t, 0, factory.commits)
	assert.Equal(t, 1, factory.rollbacks)
}

func TestTransactionRetriesConflicts(t *testing.T) {
	factory := &countingFactory{}
	bus := Transaction(factory, nil)(busReturning(func(attempt int) (any, error) {
		if attempt < 3 {
			return nil, fmt.Errorf("save booking: %w", uow.ErrConflict)
		}
		return "won", nil
	}))

	res, err := bus.Dispatch(context.Background(), pingCommand{})
	require.NoError(t, err)
	assert.Equal(t, "won", res)
	assert.Equal(t, 3, factory.begins)
	assert.Equal(t, 2, factory.rollbacks)
	assert.Equal(t, 1, factory.commits)
}

func TestTransactionGivesUpAfterRetryBudget(t *testing.T) {
	factory := &countingFactory{}
	bus := Transaction(factory, nil)(busReturning(func(int) (any, error) { return nil, uow.ErrConflict }))

	_, err := bus.Dispatch(context.Background(), pingCommand{})
	assert.ErrorIs(t, err, uow.ErrConflict)
	assert.Equal(t, DefaultConflictRetries+1, factory.begins)
}
