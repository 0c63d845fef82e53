package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in an owner's conversation. CreatedAt is
// server-assigned on append and is the display order.
type Turn struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   string    `gorm:"size:128;not null;index" json:"-"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageRef  string    `gorm:"size:512" json:"image_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
