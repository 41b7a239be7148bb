// internal/storage/models/launch.go
package models

import "time"

type LaunchInfo struct {
	BaseModel
	Mint                string `gorm:"unique;not null;type:varchar(44)"`
	Creator             string `gorm:"index;not null;type:varchar(44)"`
	TokenName           string `gorm:"not null;type:varchar(32)"`
	TokenSymbol         string `gorm:"not null;type:varchar(10)"`
	TotalSupply         uint64 `gorm:"not null"`
	BasePrice           uint64 `gorm:"not null"`
	Slope               uint64 `gorm:"not null;default:0"`
	GraduationThreshold uint64 `gorm:"not null;default:0"`
	Phase               string `gorm:"index;not null;type:varchar(16)"`
	PresaleEndsAt       *time.Time
}

type PhaseChange struct {
	BaseModel
	Mint      string `gorm:"index;not null;type:varchar(44)"`
	FromPhase string `gorm:"not null;type:varchar(16)"`
	ToPhase   string `gorm:"not null;type:varchar(16)"`
}
