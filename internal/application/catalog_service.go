package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-session-booking/internal/domain/event"
	"github.com/sanosuguru/go-session-booking/internal/domain/session"
)

// CatalogService はイベントとセッションの登録・編集を扱う
type CatalogService struct {
	eventRepo   event.Repository
	sessionRepo session.Repository
}

func NewCatalogService(eventRepo event.Repository, sessionRepo session.Repository) *CatalogService {
	return &CatalogService{eventRepo: eventRepo, sessionRepo: sessionRepo}
}

type CreateEventInput struct {
	Name        string
	Description string
	Venue       string
	Categories  []string
}

func (s *CatalogService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	e := event.NewEvent(input.Name, input.Description, input.Venue, input.Categories)
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return e, nil
}

type UpdateEventInput struct {
	ID          string
	Name        string
	Description string
	Venue       string
	Categories  []string
}

func (s *CatalogService) UpdateEvent(ctx context.Context, input UpdateEventInput) (*event.Event, error) {
	e, err := s.eventRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	e.Edit(input.Name, input.Description, input.Venue, input.Categories)
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEvent はイベントを削除する
// 配下のセッションに座席を保持している予約がある間は削除できない
func (s *CatalogService) DeleteEvent(ctx context.Context, id string) error {
	return s.eventRepo.Delete(ctx, id)
}

type CreateSessionInput struct {
	EventID   string
	StartAt   time.Time
	EndAt     time.Time
	Capacity  int
	BasePrice decimal.Decimal
}

// CreateSession はイベントにセッションを追加する
// 同じイベント内で時間帯が重なるセッションは作成できない
func (s *CatalogService) CreateSession(ctx context.Context, input CreateSessionInput) (*session.Session, error) {
	if _, err := s.eventRepo.GetByID(ctx, input.EventID); err != nil {
		return nil, err
	}

	se := session.NewSession(input.EventID, input.StartAt, input.EndAt, input.Capacity, input.BasePrice)
	if err := se.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}

	existing, err := s.sessionRepo.ListByEventID(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if se.Overlaps(other) {
			return nil, session.ErrSessionOverlap
		}
	}

	if err := s.sessionRepo.Create(ctx, se); err != nil {
		return nil, fmt.Errorf("セッション作成に失敗しました: %w", err)
	}
	return se, nil
}
