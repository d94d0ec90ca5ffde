package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestBasket_Total(t *testing.T) {
	tests := []struct {
		name  string
		items []BasketItem
		want  string
	}{
		{
			name:  "empty basket",
			items: nil,
			want:  "0",
		},
		{
			name: "single line",
			items: []BasketItem{
				{ProductID: 1, ProductUnitPrice: decimal.RequireFromString("1.50"), Quantity: 3},
			},
			want: "4.5",
		},
		{
			name: "no float drift",
			items: []BasketItem{
				{ProductID: 1, ProductUnitPrice: decimal.RequireFromString("0.10"), Quantity: 1},
				{ProductID: 2, ProductUnitPrice: decimal.RequireFromString("0.20"), Quantity: 1},
				{ProductID: 3, ProductUnitPrice: decimal.RequireFromString("19.80"), Quantity: 1},
			},
			want: "20.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Basket{Items: tt.items}
			assert.True(t, decimal.RequireFromString(tt.want).Equal(b.Total()), "got %s", b.Total())
		})
	}
}

func TestBasket_ItemAndContainsType(t *testing.T) {
	b := Basket{Items: []BasketItem{
		{ProductID: 4, TypeID: intPtr(3), Quantity: 1},
		{ProductID: 7, Quantity: 2},
	}}

	item, ok := b.Item(7)
	assert.True(t, ok)
	assert.Equal(t, 2, item.Quantity)

	_, ok = b.Item(99)
	assert.False(t, ok)

	assert.True(t, b.ContainsType(3))
	assert.False(t, b.ContainsType(2))
}

func TestBasket_Summary(t *testing.T) {
	b := Basket{Items: []BasketItem{
		{ProductID: 4, ProductUnitPrice: decimal.RequireFromString("2.00"), Quantity: 2},
	}}

	summary := b.Summary()
	assert.Equal(t, []BasketLine{{ProductID: 4, Quantity: 2}}, summary.Items)
	assert.True(t, decimal.NewFromInt(4).Equal(summary.Total))

	empty := (&Basket{}).Summary()
	assert.NotNil(t, empty.Items)
	assert.True(t, empty.Total.IsZero())
}

func TestInvoiceItemsFromBasket(t *testing.T) {
	b := Basket{Items: []BasketItem{
		{ProductID: 1, ProductName: "Cotisation", TypeID: intPtr(2), ProductUnitPrice: decimal.RequireFromString("15.00"), Quantity: 1},
		{ProductID: 2, ProductName: "Barbar", ProductUnitPrice: decimal.RequireFromString("1.70"), Quantity: 3},
	}}

	items := InvoiceItemsFromBasket(&b)
	assert.Len(t, items, 2)
	assert.Equal(t, "Barbar", items[1].ProductName)
	assert.Equal(t, 3, items[1].Quantity)

	inv := Invoice{Items: items}
	assert.True(t, b.Total().Equal(inv.Total()))
}
