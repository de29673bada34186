// Package memory はプロセス内メモリ上のストア実装を提供する
// 単一インスタンス構成や開発・テスト用途で使う
package memory

import (
	"sync"

	"github.com/sanosuguru/go-session-booking/internal/domain/booking"
	"github.com/sanosuguru/go-session-booking/internal/domain/event"
	"github.com/sanosuguru/go-session-booking/internal/domain/session"
)

// sessionRecord はセッション1件分の状態
// mu がそのセッションのクリティカルセクションになる
// deleted はイベント削除で取り除かれたことを示し、mu の保護下で読み書きする
type sessionRecord struct {
	mu      sync.Mutex
	session session.Session
	deleted bool
}

type idempotencyKey struct {
	userID string
	key    string
}

// Store は各リポジトリと在庫台帳が共有するデータ
// mu はマップの参照・更新のみを保護する。mu を保持したまま sessionRecord.mu を取得してはならない
type Store struct {
	mu          sync.RWMutex
	events      map[string]*event.Event
	sessions    map[string]*sessionRecord
	bookings    map[string]*booking.Booking
	idempotency map[idempotencyKey]string
}

// NewStore は空のストアを作成する
func NewStore() *Store {
	return &Store{
		events:      make(map[string]*event.Event),
		sessions:    make(map[string]*sessionRecord),
		bookings:    make(map[string]*booking.Booking),
		idempotency: make(map[idempotencyKey]string),
	}
}

func (s *Store) record(id string) (*sessionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[id]
	return rec, ok
}

func cloneEvent(e *event.Event) *event.Event {
	c := *e
	c.Categories = append([]string(nil), e.Categories...)
	return &c
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	c := *b
	if b.ConfirmedAt != nil {
		t := *b.ConfirmedAt
		c.ConfirmedAt = &t
	}
	if b.CancelledAt != nil {
		t := *b.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
