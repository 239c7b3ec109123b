package sync

import "time"

// PosEventAck marks that a POS terminal has consumed an event. The pending
// query for a terminal excludes events it already acknowledged.
type PosEventAck struct {
	PosID     string    `gorm:"column:pos_id;type:varchar(64);primaryKey" json:"pos_id"`
	EventID   string    `gorm:"column:event_id;type:varchar(128);primaryKey" json:"event_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PosEventAck) TableName() string {
	return "pos_event_ack"
}
