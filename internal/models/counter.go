package models

// CounterType is the kind of point of sale.
type CounterType string

const (
	CounterTypeBar     CounterType = "BAR"
	CounterTypeOffice  CounterType = "OFFICE"
	CounterTypeEboutic CounterType = "EBOUTIC"
)

type Counter struct {
	ID   int         `json:"id" db:"id"`
	Name string      `json:"name" db:"name"`
	Type CounterType `json:"type" db:"type"`
}

// Club is the association club owning products and sales.
type Club struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
