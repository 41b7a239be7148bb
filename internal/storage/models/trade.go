// internal/storage/models/trade.go
package models

type Trade struct {
	BaseModel
	Mint       string `gorm:"index;not null;type:varchar(44)"`
	Trader     string `gorm:"index;not null;type:varchar(44)"`
	Side       string `gorm:"not null;type:varchar(8)"`
	Tokens     uint64 `gorm:"not null"`
	Funds      uint64 `gorm:"not null"`
	SpotPrice  uint64 `gorm:"not null"`
	PhaseLabel string `gorm:"not null;type:varchar(16);default:'curve'"`
}

type PresaleDeposit struct {
	BaseModel
	Mint         string `gorm:"index;not null;type:varchar(44)"`
	Buyer        string `gorm:"index;not null;type:varchar(44)"`
	Funds        uint64 `gorm:"not null"`
	TotalDeposit uint64 `gorm:"not null"`
}

type BlockedTransfer struct {
	BaseModel
	Mint        string `gorm:"index;not null;type:varchar(44)"`
	Sender      string `gorm:"index;not null;type:varchar(44)"`
	Destination string `gorm:"not null;type:varchar(44)"`
	SpotPrice   uint64 `gorm:"not null"`
	EntryPrice  uint64 `gorm:"not null"`
}
