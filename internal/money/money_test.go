package money_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/money"
)

func TestParse(t *testing.T) {
	d := money.Parse("1234.56")
	assert.True(t, d.Equal(dec.RequireFromString("1234.56")))

	// Leading/trailing whitespace is tolerated
	d = money.Parse("  118.00 ")
	assert.True(t, d.Equal(dec.RequireFromString("118.00")))

	// Garbage degrades to zero, never an error
	assert.True(t, money.Parse("not-a-number").IsZero())
	assert.True(t, money.Parse("").IsZero())
}

func TestParseOr(t *testing.T) {
	def := dec.NewFromInt(8)

	d := money.ParseOr("10", def)
	assert.True(t, d.Equal(dec.NewFromInt(10)))

	d = money.ParseOr("", def)
	assert.True(t, d.Equal(def))

	d = money.ParseOr("x", def)
	assert.True(t, d.Equal(def))
}

func TestFromFloat(t *testing.T) {
	d := money.FromFloat(100.555)
	// Should round to 2 decimal places
	assert.True(t, d.Equal(dec.NewFromFloat(100.56)))
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		percent  int64
		expected string
	}{
		{"8% of 1000", "1000", 8, "80"},
		{"12% of 2500", "2500", 12, "300"},
		{"0% of 1000", "1000", 0, "0"},
		{"8% of 333.33 rounds", "333.33", 8, "26.67"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := money.Percentage(dec.RequireFromString(tt.amount), dec.NewFromInt(tt.percent))
			assert.True(t, result.Equal(dec.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, result)
		})
	}
}

func TestNetPayable(t *testing.T) {
	total := dec.NewFromInt(1180)
	retention := dec.NewFromInt(80)
	detraction := dec.NewFromInt(100)

	net := money.NetPayable(total, retention, detraction)
	assert.True(t, net.Equal(dec.NewFromInt(1000)))

	// Never negative
	net = money.NetPayable(dec.NewFromInt(50), dec.NewFromInt(80), dec.Zero)
	assert.True(t, net.IsZero())
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.NewFromInt(10),
		dec.RequireFromString("0.50"),
		dec.NewFromInt(5),
	}
	assert.True(t, money.Sum(values).Equal(dec.RequireFromString("15.50")))
	assert.True(t, money.Sum(nil).IsZero())
}

func TestIsPositive(t *testing.T) {
	assert.True(t, money.IsPositive(dec.NewFromInt(1)))
	assert.False(t, money.IsPositive(dec.Zero))
	assert.False(t, money.IsPositive(dec.NewFromInt(-1)))
}
