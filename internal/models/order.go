package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                        // 主键
	UserID             uint           `gorm:"index;not null" json:"user_id"`                               // 用户ID
	TotalAmount        Money          `gorm:"type:decimal(10,2);not null" json:"total_amount"`             // 订单总额（服务端按商品现价重算）
	ShippingAddress    string         `gorm:"type:text;not null" json:"shipping_address"`                  // 收货地址
	ShippingCity       string         `gorm:"not null" json:"shipping_city"`                               // 城市
	ShippingPostalCode string         `gorm:"not null" json:"shipping_postal_code"`                        // 邮编
	ShippingCountry    string         `gorm:"not null" json:"shipping_country"`                            // 国家
	PaymentMethod      string         `gorm:"not null;default:'esewa'" json:"payment_method"`              // 支付方式
	PaymentStatus      string         `gorm:"index;not null;default:'pending'" json:"payment_status"`      // 支付状态（pending/completed/failed）
	OrderStatus        string         `gorm:"index;not null;default:'processing'" json:"order_status"`     // 订单状态（processing/shipped/delivered/cancelled）
	PaymentID          string         `gorm:"type:varchar(100)" json:"payment_id,omitempty"`               // 外部支付引用号
	DeliveredAt        *time.Time     `json:"delivered_at,omitempty"`                                      // 送达时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	User  *User       `gorm:"foreignKey:UserID" json:"-"`                // 下单用户
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
