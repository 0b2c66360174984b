package models

import (
	"time"

	"github.com/google/uuid"
)

// PickupWindow is a recurring weekly slot customers choose at checkout.
// Times are local bakery time in "15:04" form.
type PickupWindow struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Weekday   int       `gorm:"column:weekday;not null"`
	StartTime string    `gorm:"column:start_time;not null"`
	EndTime   string    `gorm:"column:end_time;not null"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
