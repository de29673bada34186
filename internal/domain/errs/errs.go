// Package errs はドメイン全体で共有するエラー種別を定義する
package errs

import "errors"

// エラー種別。各ドメインのエラーはいずれかの種別にラップされる
var (
	ErrNotFound          = errors.New("リソースが見つかりません")
	ErrInvalidInput      = errors.New("入力が不正です")
	ErrExhausted         = errors.New("空席が不足しています")
	ErrInvalidTransition = errors.New("不正な状態遷移です")
)

// kindError は種別付きのドメインエラー
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// New は kind に分類されるエラーを作成する
// errors.Is(err, kind) が true になる
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Code はエラー種別をレスポンス用の識別子に変換する
// 種別を持たないエラーは空文字を返す
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrExhausted):
		return "EXHAUSTED"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	default:
		return ""
	}
}
