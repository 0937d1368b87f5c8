package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                  // 主键
	Name          string         `gorm:"not null;index" json:"name"`                            // 商品名称
	Description   string         `gorm:"type:text;not null" json:"description"`                 // 商品描述
	Price         Money          `gorm:"type:decimal(10,2);not null" json:"price"`              // 价格
	DiscountPrice *Money         `gorm:"type:decimal(10,2)" json:"discount_price,omitempty"`    // 折扣价（为空表示无折扣）
	ImageURL      string         `gorm:"not null" json:"image_url"`                             // 主图地址
	Brand         string         `gorm:"not null;index" json:"brand"`                           // 品牌
	Category      string         `gorm:"not null;index" json:"category"`                        // 分类
	CountInStock  int            `gorm:"not null;default:0" json:"count_in_stock"`              // 库存数量（始终 >= 0）
	Rating        float64        `gorm:"default:0" json:"rating"`                               // 评分均值
	NumReviews    int            `gorm:"default:0" json:"num_reviews"`                          // 评论数量
	IsFeatured    bool           `gorm:"default:false;index" json:"is_featured"`                // 是否精选
	IsNew         bool           `gorm:"default:false;index" json:"is_new"`                     // 是否新品
	Sizes         StringArray    `gorm:"type:json" json:"sizes"`                                // 可选尺码
	Colors        StringArray    `gorm:"type:json" json:"colors"`                               // 可选配色
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                            // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间

	// 关联
	Reviews []Review `gorm:"foreignKey:ProductID" json:"reviews,omitempty"` // 评论列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// UnitPrice 返回生效单价（有折扣价时取折扣价）
func (p *Product) UnitPrice() Money {
	if p == nil {
		return Money{}
	}
	if p.DiscountPrice != nil && p.DiscountPrice.Decimal.IsPositive() {
		return *p.DiscountPrice
	}
	return p.Price
}
