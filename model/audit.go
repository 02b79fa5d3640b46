package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records campaign and character mutations.
type AuditLog struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID     string         `gorm:"index:idx_audit_trace;size:36;not null" json:"trace_id"`
	AccountID   *int64         `gorm:"index:idx_audit_account" json:"account_id"`
	CampaignID  *int64         `json:"campaign_id"`
	CharacterID *int64         `gorm:"index:idx_audit_character" json:"character_id"`
	Action      string         `gorm:"size:64;not null" json:"action"`
	Request     datatypes.JSON `json:"request"`
	Error       string         `gorm:"type:text" json:"error"`
	IP          string         `gorm:"size:45" json:"ip"`
	DurationMs  int            `json:"duration_ms"`
	CreatedAt   time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
