package memory

import (
	"context"

	"github.com/sanosuguru/go-session-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-session-booking/internal/domain/session"
)

// Ledger はセッションごとの Mutex で線形化する在庫台帳
type Ledger struct {
	store *Store
}

// NewLedger は新しい在庫台帳を作成する
func NewLedger(store *Store) *Ledger {
	return &Ledger{store: store}
}

// Atomically はセッションの Mutex を保持したまま fn を実行する
// fn がエラーを返した場合、予約済み席数は変更されない
func (l *Ledger) Atomically(ctx context.Context, sessionID string, fn func(ctx context.Context, slot *inventory.Slot) error) error {
	rec, ok := l.store.record(sessionID)
	if !ok {
		return session.ErrSessionNotFound
	}
	return l.atomically(ctx, rec, fn)
}

// atomically は取得済みのレコードをロックして fn を実行する
// ロックを待つ間にイベントごと削除されていれば fn は実行しない
func (l *Ledger) atomically(ctx context.Context, rec *sessionRecord, fn func(ctx context.Context, slot *inventory.Slot) error) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return session.ErrSessionNotFound
	}

	sessionID := rec.session.ID
	slot := inventory.NewSlot(sessionID, inventory.Occupancy{
		Capacity: rec.session.Capacity,
		Reserved: rec.session.Reserved,
	})
	if err := fn(ctx, slot); err != nil {
		return err
	}
	if slot.Dirty() {
		rec.session.Reserved = slot.Occupancy().Reserved
	}
	return nil
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
func (l *Ledger) Occupancy(_ context.Context, sessionID string) (inventory.Occupancy, error) {
	rec, ok := l.store.record(sessionID)
	if !ok {
		return inventory.Occupancy{}, session.ErrSessionNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.deleted {
		return inventory.Occupancy{}, session.ErrSessionNotFound
	}
	return inventory.Occupancy{Capacity: rec.session.Capacity, Reserved: rec.session.Reserved}, nil
}
