package models

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCart(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    []CartEntry
		wantErr error
	}{
		{
			name:  "valid cart",
			value: `[{"id": 1, "quantity": 2}, {"id": 5, "quantity": 1}]`,
			want:  []CartEntry{{ProductID: 1, Quantity: 2}, {ProductID: 5, Quantity: 1}},
		},
		{
			name:  "url encoded cart",
			value: url.QueryEscape(`[{"id":3,"quantity":4}]`),
			want:  []CartEntry{{ProductID: 3, Quantity: 4}},
		},
		{
			name:    "empty value",
			value:   "",
			wantErr: ErrCartEmpty,
		},
		{
			name:    "empty array",
			value:   "[]",
			wantErr: ErrCartEmpty,
		},
		{
			name:    "only zero quantities",
			value:   `[{"id": 1, "quantity": 0}, {"id": 2, "quantity": 0}]`,
			wantErr: ErrCartEmpty,
		},
		{
			name:  "zero quantity kept beside positive",
			value: `[{"id": 1, "quantity": 0}, {"id": 2, "quantity": 3}]`,
			want:  []CartEntry{{ProductID: 1, Quantity: 0}, {ProductID: 2, Quantity: 3}},
		},
		{
			name:    "not json",
			value:   "not-a-cart",
			wantErr: ErrCartMalformed,
		},
		{
			name:    "missing quantity",
			value:   `[{"id": 1}]`,
			wantErr: ErrCartMalformed,
		},
		{
			name:    "missing id",
			value:   `[{"quantity": 1}]`,
			wantErr: ErrCartMalformed,
		},
		{
			name:    "negative quantity",
			value:   `[{"id": 1, "quantity": 2}, {"id": 2, "quantity": -1}]`,
			wantErr: ErrCartTampered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCart(tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
