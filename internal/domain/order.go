package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order holds a placed order. TotalAmount is denormalized; readers recompute
// it from the live detail set, the stored value is a cache.
type Order struct {
	ID            int64           `gorm:"primaryKey" json:"id,string" form:"id"`
	OrderDateTime time.Time       `gorm:"column:order_date_time;index" json:"order_date_time"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2)" json:"total_amount"`
	Status        bool            `gorm:"column:status" json:"status"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	Details       []OrderDetail   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_details"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// ComputedTotal sums the subtotals of the current detail set.
func (o *Order) ComputedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, d := range o.Details {
		total = total.Add(d.SubTotal)
	}
	return total
}

// OrderDetail is one line of an order. UnitPrice is the product price
// snapshot taken at reservation time and is never re-read afterwards.
type OrderDetail struct {
	ID        int64           `gorm:"primaryKey" json:"id,string"`
	OrderID   int64           `gorm:"column:order_id;index;not null" json:"order_id,string"`
	ProductID int64           `gorm:"column:product_id;index;not null" json:"product_id,string"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Qty       int             `gorm:"column:qty;not null" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unit_price"`
	SubTotal  decimal.Decimal `gorm:"column:sub_total;type:decimal(12,2);not null" json:"sub_total"`
	Message   string          `gorm:"column:message;size:255" json:"message"`
}

// TableName Specify table name
func (OrderDetail) TableName() string {
	return "order_detail"
}
