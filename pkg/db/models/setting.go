package models

import "time"

// Setting is a single key/value row for store-level configuration such as
// fee rates and the delivery postal-code allow list. Values are stored as
// text and parsed by the settings service against a typed schema.
type Setting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
