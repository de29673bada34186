package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-session-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-session-booking/internal/domain/session"
)

type occupancyRow struct {
	Capacity int `db:"capacity"`
	Reserved int `db:"reserved"`
}

// Ledger はセッション行の行ロックで線形化する在庫台帳
type Ledger struct {
	db        *sqlx.DB
	txManager *TxManager
}

// NewLedger は新しい在庫台帳を作成する
func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{db: db, txManager: NewTxManager(db)}
}

// Atomically はセッション行を SELECT ... FOR UPDATE でロックしたトランザクション内で fn を実行する
// fn に渡す ctx にはトランザクションが載っており、リポジトリの書き込みも同じトランザクションでコミットされる
func (l *Ledger) Atomically(ctx context.Context, sessionID string, fn func(ctx context.Context, slot *inventory.Slot) error) error {
	return l.txManager.WithTx(ctx, func(txCtx context.Context, tx *sqlx.Tx) error {
		var row occupancyRow
		err := tx.GetContext(txCtx, &row, `SELECT capacity, reserved FROM sessions WHERE id = $1 FOR UPDATE`, sessionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return session.ErrSessionNotFound
			}
			return fmt.Errorf("セッションのロック取得に失敗しました: %w", err)
		}

		slot := inventory.NewSlot(sessionID, inventory.Occupancy{Capacity: row.Capacity, Reserved: row.Reserved})
		if err := fn(txCtx, slot); err != nil {
			return err
		}
		if !slot.Dirty() {
			return nil
		}
		if _, err := tx.ExecContext(txCtx, `UPDATE sessions SET reserved = $1 WHERE id = $2`, slot.Occupancy().Reserved, sessionID); err != nil {
			return fmt.Errorf("予約済み席数の更新に失敗しました: %w", err)
		}
		return nil
	})
}

// Reserve は座席を確保する
func (l *Ledger) Reserve(ctx context.Context, sessionID string, seats int) (inventory.Token, error) {
	return inventory.ReserveWith(ctx, l, sessionID, seats)
}

// Release は座席を解放する
func (l *Ledger) Release(ctx context.Context, sessionID string, seats int) error {
	return inventory.ReleaseWith(ctx, l, sessionID, seats)
}

// Occupancy は現在の占有状況を返す
func (l *Ledger) Occupancy(ctx context.Context, sessionID string) (inventory.Occupancy, error) {
	var row occupancyRow
	err := sqlx.GetContext(ctx, executor(ctx, l.db), &row, `SELECT capacity, reserved FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return inventory.Occupancy{}, session.ErrSessionNotFound
		}
		return inventory.Occupancy{}, fmt.Errorf("占有状況の取得に失敗しました: %w", err)
	}
	return inventory.Occupancy{Capacity: row.Capacity, Reserved: row.Reserved}, nil
}

var _ inventory.Ledger = (*Ledger)(nil)
