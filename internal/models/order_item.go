package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem 订单项表
// 下单时快照单价，后续商品改价不影响已有订单。
type OrderItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                      // 主键
	OrderID   uint           `gorm:"index;not null" json:"order_id"`            // 订单ID
	ProductID uint           `gorm:"index;not null" json:"product_id"`          // 商品ID
	Quantity  int            `gorm:"not null" json:"quantity"`                  // 数量
	Price     Money          `gorm:"type:decimal(10,2);not null" json:"price"`  // 单价快照
	Size      string         `gorm:"type:varchar(20)" json:"size"`              // 尺码
	Color     string         `gorm:"type:varchar(30)" json:"color"`             // 配色
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                   // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                            // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
