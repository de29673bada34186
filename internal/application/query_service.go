package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-session-booking/internal/domain/booking"
	"github.com/sanosuguru/go-session-booking/internal/domain/event"
	"github.com/sanosuguru/go-session-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-session-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-session-booking/internal/domain/session"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SessionView は残席数と現在価格を含むセッションの表示用データ
type SessionView struct {
	Session      *session.Session
	Available    int
	CurrentPrice decimal.Decimal
}

// QueryService は読み取り専用の問い合わせを扱う
// 残席数と価格は問い合わせのたびに在庫台帳から算出し、キャッシュしない
type QueryService struct {
	eventRepo   event.Repository
	sessionRepo session.Repository
	bookingRepo booking.Repository
	ledger      inventory.Ledger
	policy      pricing.Policy
}

func NewQueryService(
	eventRepo event.Repository,
	sessionRepo session.Repository,
	bookingRepo booking.Repository,
	ledger inventory.Ledger,
	policy pricing.Policy,
) *QueryService {
	return &QueryService{
		eventRepo:   eventRepo,
		sessionRepo: sessionRepo,
		bookingRepo: bookingRepo,
		ledger:      ledger,
		policy:      policy,
	}
}

type ListEventsInput struct {
	Category string
	Limit    int
	Offset   int
}

func (s *QueryService) ListEvents(ctx context.Context, input ListEventsInput) ([]*event.Event, error) {
	limit, offset := normalizePage(input.Limit, input.Offset)
	return s.eventRepo.List(ctx, event.ListFilter{Category: input.Category, Limit: limit, Offset: offset})
}

func (s *QueryService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// ListSessions はイベントのセッション一覧を返す
// onlyAvailable が true の場合は残席のあるセッションのみ返す
func (s *QueryService) ListSessions(ctx context.Context, eventID string, onlyAvailable bool) ([]*SessionView, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	views := make([]*SessionView, 0, len(sessions))
	for _, se := range sessions {
		view, err := s.view(ctx, se)
		if err != nil {
			// 一覧取得後に削除されたセッション
			if errors.Is(err, session.ErrSessionNotFound) {
				continue
			}
			return nil, err
		}
		if onlyAvailable && view.Available == 0 {
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *QueryService) GetSession(ctx context.Context, id string) (*SessionView, error) {
	se, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, se)
}

// ListUserBookings はユーザーの予約を新しい順に返す
func (s *QueryService) ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if userID == "" {
		return nil, booking.ErrUserIDRequired
	}
	limit, offset = normalizePage(limit, offset)
	return s.bookingRepo.ListByUserID(ctx, userID, limit, offset)
}

func (s *QueryService) view(ctx context.Context, se *session.Session) (*SessionView, error) {
	occ, err := s.ledger.Occupancy(ctx, se.ID)
	if err != nil {
		return nil, err
	}
	se.Capacity = occ.Capacity
	se.Reserved = occ.Reserved
	return &SessionView{
		Session:      se,
		Available:    occ.Available(),
		CurrentPrice: s.policy.Quote(se.BasePrice, occ.Reserved, occ.Capacity),
	}, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
