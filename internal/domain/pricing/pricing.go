// Package pricing はセッションの占有率から現在価格を算出する
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Policy は価格ポリシー
// Quote は占有率に対して非減少で、占有率0では基本料金と一致する
type Policy interface {
	Quote(basePrice decimal.Decimal, reserved, capacity int) decimal.Decimal
}

// ポリシー名
const (
	PolicyFlat   = "flat"
	PolicyTiered = "tiered"
	PolicyLinear = "linear"
)

var one = decimal.NewFromInt(1)

// NewPolicy は設定値からポリシーを生成する
// threshold と maxMultiplier は linear でのみ使用する
func NewPolicy(name string, threshold, maxMultiplier float64) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyFlat:
		return Flat{}, nil
	case PolicyTiered:
		return DefaultTiered(), nil
	case PolicyLinear:
		return NewLinear(threshold, maxMultiplier)
	default:
		return nil, fmt.Errorf("unknown pricing policy: %q", name)
	}
}

// Ratio は占有率を返す。定員が0以下の場合は0
func Ratio(reserved, capacity int) decimal.Decimal {
	if capacity <= 0 || reserved <= 0 {
		return decimal.Zero
	}
	if reserved > capacity {
		return one
	}
	return decimal.NewFromInt(int64(reserved)).Div(decimal.NewFromInt(int64(capacity)))
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Flat は常に基本料金を返す
type Flat struct{}

// Quote は基本料金を返す
func (Flat) Quote(basePrice decimal.Decimal, _, _ int) decimal.Decimal {
	return round(basePrice)
}

// Tier は占有率の下限と倍率の組
type Tier struct {
	MinRatio   decimal.Decimal
	Multiplier decimal.Decimal
}

// Tiered は段階的な割増料金
type Tiered struct {
	tiers []Tier
}

// DefaultTiered は 60% 以上で 1.2 倍、80% 以上で 1.5 倍のポリシーを返す
func DefaultTiered() Tiered {
	t, _ := NewTiered([]Tier{
		{MinRatio: decimal.RequireFromString("0.6"), Multiplier: decimal.RequireFromString("1.2")},
		{MinRatio: decimal.RequireFromString("0.8"), Multiplier: decimal.RequireFromString("1.5")},
	})
	return t
}

// NewTiered は段階料金を作成する
// 段階は占有率の昇順かつ倍率が非減少で、倍率は1以上である必要がある
func NewTiered(tiers []Tier) (Tiered, error) {
	prev := one
	for i, t := range tiers {
		if !t.MinRatio.IsPositive() || t.MinRatio.GreaterThan(one) {
			return Tiered{}, fmt.Errorf("tier %d: ratio must be in (0, 1]", i)
		}
		if i > 0 && !t.MinRatio.GreaterThan(tiers[i-1].MinRatio) {
			return Tiered{}, fmt.Errorf("tier %d: ratios must be ascending", i)
		}
		if t.Multiplier.LessThan(prev) {
			return Tiered{}, fmt.Errorf("tier %d: multiplier must be non-decreasing and >= 1", i)
		}
		prev = t.Multiplier
	}
	return Tiered{tiers: append([]Tier(nil), tiers...)}, nil
}

// Quote は占有率に応じた段階の倍率を適用する
func (t Tiered) Quote(basePrice decimal.Decimal, reserved, capacity int) decimal.Decimal {
	ratio := Ratio(reserved, capacity)
	multiplier := one
	for _, tier := range t.tiers {
		if ratio.GreaterThanOrEqual(tier.MinRatio) {
			multiplier = tier.Multiplier
		}
	}
	return round(basePrice.Mul(multiplier))
}

// Linear は閾値までは基本料金、閾値を超えると満席時の最大倍率まで線形に上昇する
type Linear struct {
	threshold     decimal.Decimal
	maxMultiplier decimal.Decimal
}

// NewLinear は線形割増ポリシーを作成する
func NewLinear(threshold, maxMultiplier float64) (Linear, error) {
	if threshold < 0 || threshold >= 1 {
		return Linear{}, fmt.Errorf("threshold must be in [0, 1): %v", threshold)
	}
	if maxMultiplier < 1 {
		return Linear{}, fmt.Errorf("max multiplier must be >= 1: %v", maxMultiplier)
	}
	return Linear{
		threshold:     decimal.NewFromFloat(threshold),
		maxMultiplier: decimal.NewFromFloat(maxMultiplier),
	}, nil
}

// Quote は線形に割増した価格を返す
func (l Linear) Quote(basePrice decimal.Decimal, reserved, capacity int) decimal.Decimal {
	ratio := Ratio(reserved, capacity)
	if ratio.LessThanOrEqual(l.threshold) {
		return round(basePrice)
	}
	progress := ratio.Sub(l.threshold).Div(one.Sub(l.threshold))
	multiplier := one.Add(l.maxMultiplier.Sub(one).Mul(progress))
	return round(basePrice.Mul(multiplier))
}
