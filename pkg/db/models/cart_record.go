package models

import "time"

// CartRecord is the durable copy of one session's cart state. The state is a
// serialized snapshot so the row survives schema drift in the in-memory shape.
type CartRecord struct {
	SessionID string    `gorm:"column:session_id;primaryKey"`
	State     []byte    `gorm:"column:state;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name independent of gorm pluralization.
func (CartRecord) TableName() string {
	return "cart_records"
}
