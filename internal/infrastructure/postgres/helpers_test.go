package postgres

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func TestNullLimit(t *testing.T) {
	assert.False(t, nullLimit(0).Valid)
	assert.False(t, nullLimit(-1).Valid)

	l := nullLimit(20)
	assert.True(t, l.Valid)
	assert.Equal(t, int64(20), l.Int64)
}

func TestExecutor(t *testing.T) {
	db := &sqlx.DB{}

	t.Run("トランザクションがなければDBを使う", func(t *testing.T) {
		assert.Same(t, db, executor(context.Background(), db))
	})

	t.Run("ctx のトランザクションを優先する", func(t *testing.T) {
		tx := &sqlx.Tx{}
		ctx := withTx(context.Background(), tx)
		assert.Same(t, tx, executor(ctx, db))
	})
}
