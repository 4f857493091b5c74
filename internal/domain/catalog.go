package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	Name        string    `gorm:"index" json:"name" form:"name"`
	Description string    `gorm:"size:255" json:"description" form:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "category"
}

// Product is the authoritative catalog row. Stock is nullable: a null stock
// counts as zero available when reserving.
type Product struct {
	ID          int64           `gorm:"primaryKey" json:"id,string" form:"id"`
	Name        string          `gorm:"index" json:"name" form:"name"`
	CategoryID  int64           `gorm:"index" json:"category_id,string" form:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Description string          `gorm:"size:255" json:"description" form:"description"`
	Stock       *int            `json:"stock" form:"stock"`
	Image       string          `gorm:"size:1024" json:"image" form:"image"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2)" json:"price" form:"price"`
	Available   bool            `gorm:"column:is_available" json:"is_available" form:"is_available"`
	Timestamp   time.Time       `json:"timestamp"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}

// StockValue returns the stock count, treating null as zero.
func (p *Product) StockValue() int {
	if p.Stock == nil {
		return 0
	}
	return *p.Stock
}
