package model

import "time"

type Profile struct {
	OwnerID     string    `gorm:"size:128;primaryKey" json:"-"`
	DisplayName string    `gorm:"size:128" json:"display_name"`
	Bio         string    `gorm:"size:512" json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
