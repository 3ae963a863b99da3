package models

// Setting is a panel-wide configuration value stored in the database,
// keyed by name (e.g. the desktop MOTD or the maintenance flag).
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"unique"`
	Value []byte `gorm:"type:blob"`
}
