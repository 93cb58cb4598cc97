package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", Free},
		{"unknown", "platinum", Free},
		{"uppercase", "PRO", Pro},
		{"padded", "  don ", Don},
		{"free", "free", Free},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("pro"))
	assert.True(t, Known(" DON "))
	assert.True(t, Known("free"))
	assert.False(t, Known("platinum"))
	assert.False(t, Known(""))
}

func TestGetFallsBackToFree(t *testing.T) {
	p := Get("no-such-plan")
	assert.Equal(t, Free, p.ID)
	assert.False(t, p.Sellable)
}

func TestAllOrder(t *testing.T) {
	plans := All()
	assert.Len(t, plans, 3)
	assert.Equal(t, Free, plans[0].ID)
	assert.Equal(t, Pro, plans[1].ID)
	assert.Equal(t, Don, plans[2].ID)
}

func TestSellable(t *testing.T) {
	plans := Sellable()
	assert.Len(t, plans, 2)
	for _, p := range plans {
		assert.True(t, p.Sellable)
		assert.NotEqual(t, Free, p.ID)
	}
}

func TestPriceBRL(t *testing.T) {
	assert.Equal(t, 19.90, Get(Pro).PriceBRL())
	assert.Equal(t, 49.90, Get(Don).PriceBRL())
	assert.Equal(t, 0.0, Get(Free).PriceBRL())
}

func TestAllowsMoreProducts(t *testing.T) {
	free := Get(Free)
	assert.True(t, free.AllowsMoreProducts(2))
	assert.False(t, free.AllowsMoreProducts(3))
	assert.False(t, free.AllowsMoreProducts(10))

	pro := Get(Pro)
	assert.True(t, pro.AllowsMoreProducts(19))
	assert.False(t, pro.AllowsMoreProducts(20))

	don := Get(Don)
	assert.True(t, don.AllowsMoreProducts(100000))
}

func TestView(t *testing.T) {
	v := Get(Pro).View()
	assert.Equal(t, "pro", v.ID)
	assert.Equal(t, int64(1990), v.PriceCents)
	assert.Equal(t, 19.90, v.PriceBRL)
	assert.Equal(t, 30, v.DurationDays)
	assert.True(t, v.Sellable)
	assert.NotEmpty(t, v.Features)
}
