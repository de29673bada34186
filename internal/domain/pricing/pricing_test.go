package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewPolicy(t *testing.T) {
	tests := []struct {
		name    string
		policy  string
		want    Policy
		wantErr bool
	}{
		{name: "空文字は flat", policy: "", want: Flat{}},
		{name: "flat", policy: "flat", want: Flat{}},
		{name: "大文字でも選択できる", policy: "Tiered", want: DefaultTiered()},
		{name: "linear", policy: "linear"},
		{name: "不明なポリシー", policy: "auction", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPolicy(tt.policy, 0.5, 2)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want != nil {
				assert.IsType(t, tt.want, p)
			} else {
				assert.IsType(t, Linear{}, p)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	assert.True(t, Ratio(0, 10).IsZero())
	assert.True(t, Ratio(5, 10).Equal(dec("0.5")))
	assert.True(t, Ratio(3, 0).IsZero())
	assert.True(t, Ratio(3, -1).IsZero())
	assert.True(t, Ratio(12, 10).Equal(decimal.NewFromInt(1)))
}

func TestFlat_Quote(t *testing.T) {
	p := Flat{}
	assert.Equal(t, "10.00", p.Quote(dec("10"), 0, 2).StringFixed(2))
	assert.Equal(t, "10.00", p.Quote(dec("10"), 2, 2).StringFixed(2))
}

func TestTiered_Quote(t *testing.T) {
	p := DefaultTiered()
	base := dec("100")

	tests := []struct {
		name     string
		reserved int
		want     string
	}{
		{"占有率0は基本料金", 0, "100"},
		{"占有率50%は基本料金", 5, "100"},
		{"占有率60%は1.2倍", 6, "120"},
		{"占有率70%は1.2倍", 7, "120"},
		{"占有率80%は1.5倍", 8, "150"},
		{"満席は1.5倍", 10, "150"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Quote(base, tt.reserved, 10)
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

func TestNewTiered_Validation(t *testing.T) {
	_, err := NewTiered([]Tier{{MinRatio: dec("0.5"), Multiplier: dec("0.8")}})
	assert.Error(t, err, "倍率1未満は不可")

	_, err = NewTiered([]Tier{
		{MinRatio: dec("0.8"), Multiplier: dec("1.5")},
		{MinRatio: dec("0.6"), Multiplier: dec("2")},
	})
	assert.Error(t, err, "占有率が昇順でない")

	_, err = NewTiered([]Tier{
		{MinRatio: dec("0.6"), Multiplier: dec("1.5")},
		{MinRatio: dec("0.8"), Multiplier: dec("1.2")},
	})
	assert.Error(t, err, "倍率が減少")
}

func TestLinear_Quote(t *testing.T) {
	p, err := NewLinear(0.5, 2)
	require.NoError(t, err)
	base := dec("10")

	assert.Equal(t, "10.00", p.Quote(base, 0, 4).StringFixed(2))
	assert.Equal(t, "10.00", p.Quote(base, 2, 4).StringFixed(2))
	assert.Equal(t, "15.00", p.Quote(base, 3, 4).StringFixed(2))
	assert.Equal(t, "20.00", p.Quote(base, 4, 4).StringFixed(2))
}

func TestNewLinear_Validation(t *testing.T) {
	_, err := NewLinear(1, 2)
	assert.Error(t, err)
	_, err = NewLinear(-0.1, 2)
	assert.Error(t, err)
	_, err = NewLinear(0.5, 0.9)
	assert.Error(t, err)
}

func TestPolicies_Properties(t *testing.T) {
	linear, err := NewLinear(0.3, 3)
	require.NoError(t, err)
	policies := map[string]Policy{
		"flat":   Flat{},
		"tiered": DefaultTiered(),
		"linear": linear,
	}
	base := dec("12.34")
	const capacity = 37

	for name, p := range policies {
		t.Run(name, func(t *testing.T) {
			assert.True(t, p.Quote(base, 0, capacity).Equal(base), "占有率0で基本料金と一致")
			assert.True(t, p.Quote(base, 0, 0).Equal(base), "定員0でもゼロ除算しない")

			prev := p.Quote(base, 0, capacity)
			for reserved := 1; reserved <= capacity; reserved++ {
				cur := p.Quote(base, reserved, capacity)
				assert.True(t, cur.GreaterThanOrEqual(prev), "非減少: reserved=%d", reserved)
				assert.True(t, cur.Equal(cur.Round(2)), "小数2桁に丸められる")
				prev = cur
			}
		})
	}
}
