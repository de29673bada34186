package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/sanosuguru/go-session-booking/internal/domain/session"
)

// SessionRepository はメモリ上のセッションリポジトリ
type SessionRepository struct {
	store *Store
}

// NewSessionRepository は新しいセッションリポジトリを作成する
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// Create は新しいセッションを作成する
func (r *SessionRepository) Create(_ context.Context, s *session.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.events[s.EventID]; !ok {
		return fmt.Errorf("イベントが存在しません: %s", s.EventID)
	}
	if _, ok := r.store.sessions[s.ID]; ok {
		return fmt.Errorf("セッションIDが重複しています: %s", s.ID)
	}
	r.store.sessions[s.ID] = &sessionRecord{session: *s}
	return nil
}

// GetByID はIDからセッションを取得する
func (r *SessionRepository) GetByID(_ context.Context, id string) (*session.Session, error) {
	rec, ok := r.store.record(id)
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return snapshot(rec), nil
}

// ListByEventID はイベント配下のセッションを開始時刻順に取得する
func (r *SessionRepository) ListByEventID(_ context.Context, eventID string) ([]*session.Session, error) {
	r.store.mu.RLock()
	records := make([]*sessionRecord, 0)
	for _, rec := range r.store.sessions {
		// EventID は作成後に変わらないためロックなしで参照できる
		if rec.session.EventID == eventID {
			records = append(records, rec)
		}
	}
	r.store.mu.RUnlock()

	sessions := make([]*session.Session, 0, len(records))
	for _, rec := range records {
		sessions = append(sessions, snapshot(rec))
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartAt.Equal(sessions[j].StartAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartAt.Before(sessions[j].StartAt)
	})
	return sessions, nil
}

func snapshot(rec *sessionRecord) *session.Session {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	s := rec.session
	return &s
}
