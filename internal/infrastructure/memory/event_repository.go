package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/sanosuguru/go-session-booking/internal/domain/event"
)

// EventRepository はメモリ上のイベントリポジトリ
type EventRepository struct {
	store *Store
}

// NewEventRepository は新しいイベントリポジトリを作成する
func NewEventRepository(store *Store) *EventRepository {
	return &EventRepository{store: store}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(_ context.Context, e *event.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.events[e.ID]; ok {
		return fmt.Errorf("イベントIDが重複しています: %s", e.ID)
	}
	r.store.events[e.ID] = cloneEvent(e)
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(_ context.Context, id string) (*event.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, ok := r.store.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return cloneEvent(e), nil
}

// List はイベント一覧を作成日時の昇順で取得する
func (r *EventRepository) List(_ context.Context, filter event.ListFilter) ([]*event.Event, error) {
	r.store.mu.RLock()
	events := make([]*event.Event, 0, len(r.store.events))
	for _, e := range r.store.events {
		if filter.Category != "" && !e.HasCategory(filter.Category) {
			continue
		}
		events = append(events, cloneEvent(e))
	}
	r.store.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
	return paginate(events, filter.Limit, filter.Offset), nil
}

// Update はイベントを更新する
func (r *EventRepository) Update(_ context.Context, e *event.Event) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.events[e.ID]; !ok {
		return event.ErrEventNotFound
	}
	r.store.events[e.ID] = cloneEvent(e)
	return nil
}

// Delete はイベントと配下のセッション・予約を削除する
// 配下の全セッションのロックを保持したまま座席の保持を確認するため、進行中の確保とは直列化される
// 座席を保持している予約があれば ErrEventHasActiveBookings を返す
func (r *EventRepository) Delete(_ context.Context, id string) error {
	for {
		records, ok := r.eventSessions(id)
		if !ok {
			return event.ErrEventNotFound
		}

		for _, rec := range records {
			rec.mu.Lock()
		}
		done, err := r.deleteLocked(id, records)
		for _, rec := range records {
			rec.mu.Unlock()
		}
		if done {
			return err
		}
	}
}

// eventSessions はイベント配下のセッションをID順に返す
// 複数のレコードを同じ順序でロックするためにソートする
func (r *EventRepository) eventSessions(id string) ([]*sessionRecord, bool) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if _, ok := r.store.events[id]; !ok {
		return nil, false
	}
	records := make([]*sessionRecord, 0)
	for _, rec := range r.store.sessions {
		if rec.session.EventID == id {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].session.ID < records[j].session.ID
	})
	return records, true
}

// deleteLocked は records のロックを保持した状態で呼ぶ
// ロック取得後にセッションが追加されていた場合は done=false を返し、呼び出し側がやり直す
func (r *EventRepository) deleteLocked(id string, records []*sessionRecord) (done bool, err error) {
	for _, rec := range records {
		if rec.session.Reserved > 0 {
			return true, event.ErrEventHasActiveBookings
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.events[id]; !ok {
		return true, event.ErrEventNotFound
	}
	current := 0
	for _, rec := range r.store.sessions {
		if rec.session.EventID == id {
			current++
		}
	}
	if current != len(records) {
		return false, nil
	}

	delete(r.store.events, id)
	removed := make(map[string]struct{}, len(records))
	for _, rec := range records {
		rec.deleted = true
		removed[rec.session.ID] = struct{}{}
		delete(r.store.sessions, rec.session.ID)
	}
	for bid, b := range r.store.bookings {
		if _, ok := removed[b.SessionID]; !ok {
			continue
		}
		if b.IdempotencyKey != "" {
			delete(r.store.idempotency, idempotencyKey{userID: b.UserID, key: b.IdempotencyKey})
		}
		delete(r.store.bookings, bid)
	}
	return true, nil
}
