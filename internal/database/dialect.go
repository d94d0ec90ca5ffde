package database

// Dialect captures the few SQL differences between the supported drivers.
type Dialect struct {
	Name string
}

// ForUpdate returns the row-locking suffix for SELECT statements run inside a
// transaction. SQLite has no row locks; its writers are serialized by
// BEGIN IMMEDIATE instead.
func (d Dialect) ForUpdate() string {
	if d.Name == DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}
