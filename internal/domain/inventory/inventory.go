// Package inventory はセッション単位の座席在庫を管理する
package inventory

import (
	"context"
	"errors"

	"github.com/sanosuguru/go-session-booking/internal/domain/errs"
)

// 在庫のエラー定義
var (
	ErrExhausted    = errs.New(errs.ErrExhausted, "空席が不足しています")
	ErrInvalidSeats = errs.New(errs.ErrInvalidInput, "座席数は1以上である必要があります")
	// ErrReleaseUnderflow は予約済み席数を超える解放を示す。呼び出し側の二重解放であり内部エラーとして扱う
	ErrReleaseUnderflow = errors.New("予約済み席数を超えて解放しようとしました")
)

// Occupancy はある時点のセッションの占有状況
type Occupancy struct {
	Capacity int
	Reserved int
}

// Available は残席数を返す
func (o Occupancy) Available() int {
	return o.Capacity - o.Reserved
}

// Token は成功した確保の記録
// Before は確保を適用する直前の占有状況で、価格計算に使う
type Token struct {
	SessionID string
	Seats     int
	Before    Occupancy
}

// Slot はクリティカルセクション内で操作する1セッション分の在庫
// Ledger.Atomically の外では使用しない
type Slot struct {
	sessionID string
	occ       Occupancy
	dirty     bool
}

// NewSlot はスロットを作成する
func NewSlot(sessionID string, occ Occupancy) *Slot {
	return &Slot{sessionID: sessionID, occ: occ}
}

// SessionID はセッションIDを返す
func (s *Slot) SessionID() string { return s.sessionID }

// Occupancy は現在の占有状況を返す
func (s *Slot) Occupancy() Occupancy { return s.occ }

// Dirty は変更があったかを返す
func (s *Slot) Dirty() bool { return s.dirty }

// Reserve は空席が足りる場合に限り座席を確保する
func (s *Slot) Reserve(seats int) (Token, error) {
	if seats < 1 {
		return Token{}, ErrInvalidSeats
	}
	if s.occ.Available() < seats {
		return Token{}, ErrExhausted
	}
	before := s.occ
	s.occ.Reserved += seats
	s.dirty = true
	return Token{SessionID: s.sessionID, Seats: seats, Before: before}, nil
}

// Release は座席を解放する
func (s *Slot) Release(seats int) error {
	if seats < 1 {
		return ErrInvalidSeats
	}
	if s.occ.Reserved < seats {
		return ErrReleaseUnderflow
	}
	s.occ.Reserved -= seats
	s.dirty = true
	return nil
}

// Ledger はセッション単位の在庫台帳
// 同一セッションへの操作は線形化され、異なるセッション同士は互いをブロックしない
type Ledger interface {
	// Reserve は座席を確保する。空席不足の場合は ErrExhausted を返す
	Reserve(ctx context.Context, sessionID string, seats int) (Token, error)
	// Release は確保済みの座席を解放する
	Release(ctx context.Context, sessionID string, seats int) error
	// Occupancy は現在の占有状況を返す
	Occupancy(ctx context.Context, sessionID string) (Occupancy, error)
	// Atomically はセッションのクリティカルセクション内で fn を実行する
	// fn がエラーを返した場合、スロットへの変更は破棄される
	// ctx には実装固有のトランザクション情報が載るため、fn 内のリポジトリ操作は渡された ctx を使う
	Atomically(ctx context.Context, sessionID string, fn func(ctx context.Context, slot *Slot) error) error
}

// ReserveWith は Atomically を使って Reserve を実装するヘルパー
func ReserveWith(ctx context.Context, l Ledger, sessionID string, seats int) (Token, error) {
	var token Token
	err := l.Atomically(ctx, sessionID, func(_ context.Context, slot *Slot) error {
		t, err := slot.Reserve(seats)
		if err != nil {
			return err
		}
		token = t
		return nil
	})
	if err != nil {
		return Token{}, err
	}
	return token, nil
}

// ReleaseWith は Atomically を使って Release を実装するヘルパー
func ReleaseWith(ctx context.Context, l Ledger, sessionID string, seats int) error {
	return l.Atomically(ctx, sessionID, func(_ context.Context, slot *Slot) error {
		return slot.Release(seats)
	})
}
