package repository

import (
	"errors"

	"github.com/sneakerhead-api/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	GetByIDAndUser(id uint, userID uint) (*models.CartItem, error)
	Upsert(item *models.CartItem) error
	UpdateQuantity(id uint, userID uint, quantity int) (int64, error)
	DeleteByIDAndUser(id uint, userID uint) (int64, error)
	DeleteVariant(userID uint, productID uint, size, color string) error
	ClearByUser(userID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByUser 获取用户购物车项
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Order("updated_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByIDAndUser 获取购物车项，归属校验在查询内完成
func (r *GormCartRepository) GetByIDAndUser(id uint, userID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Preload("Product").Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Upsert 添加或累加购物车项，同一商品同尺码同配色合并为一行
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	var existing models.CartItem
	err := r.db.Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
		item.UserID, item.ProductID, item.Size, item.Color).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(item).Error
	}
	if err != nil {
		return err
	}
	if err := r.db.Model(&existing).
		Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
		return err
	}
	item.ID = existing.ID
	item.Quantity = existing.Quantity + item.Quantity
	return nil
}

// UpdateQuantity 修改购物车项数量
func (r *GormCartRepository) UpdateQuantity(id uint, userID uint, quantity int) (int64, error) {
	result := r.db.Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("quantity", quantity)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteByIDAndUser 删除购物车项
func (r *GormCartRepository) DeleteByIDAndUser(id uint, userID uint) (int64, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteVariant 删除用户购物车中指定 (商品, 尺码, 颜色) 的行
func (r *GormCartRepository) DeleteVariant(userID uint, productID uint, size, color string) error {
	return r.db.Where("user_id = ? AND product_id = ? AND size = ? AND color = ?",
		userID, productID, size, color).Delete(&models.CartItem{}).Error
}

// ClearByUser 清空购物车
func (r *GormCartRepository) ClearByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
