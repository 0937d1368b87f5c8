package service

import (
	"strings"
	"time"

	"github.com/sneakerhead-api/internal/models"
	"github.com/sneakerhead-api/internal/repository"

	"github.com/shopspring/decimal"
)

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItemInput 加入购物车输入
type AddItemInput struct {
	UserID    uint
	ProductID uint
	Quantity  int
	Size      string
	Color     string
}

// CartSummary 购物车汇总
type CartSummary struct {
	Items      []models.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	Subtotal   models.Money      `json:"subtotal"`
}

// List 获取购物车并计算小计
// 小计按商品现价计算，仅用于展示，下单时服务端重算
func (s *CartService) List(userID uint) (*CartSummary, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	totalItems := 0
	for i := range items {
		totalItems += items[i].Quantity
		if items[i].Product != nil {
			unit := items[i].Product.UnitPrice()
			subtotal = subtotal.Add(unit.Decimal.Mul(decimal.NewFromInt(int64(items[i].Quantity))))
		}
	}
	return &CartSummary{
		Items:      items,
		TotalItems: totalItems,
		Subtotal:   models.NewMoneyFromDecimal(subtotal),
	}, nil
}

// AddItem 加入购物车，同规格条目累加数量
func (s *CartService) AddItem(input AddItemInput) (*models.CartItem, error) {
	if input.UserID == 0 || input.ProductID == 0 {
		return nil, ErrProductNotFound
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.CountInStock < input.Quantity {
		return nil, ErrInsufficientStock
	}

	now := time.Now()
	item := &models.CartItem{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		Size:      strings.TrimSpace(input.Size),
		Color:     strings.TrimSpace(input.Color),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cartRepo.Upsert(item); err != nil {
		return nil, err
	}
	item.Product = product
	return item, nil
}

// UpdateQuantity 修改购物车项数量
func (s *CartService) UpdateQuantity(userID, itemID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	item, err := s.cartRepo.GetByIDAndUser(itemID, userID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if item.Product != nil && item.Product.CountInStock < quantity {
		return nil, ErrInsufficientStock
	}

	affected, err := s.cartRepo.UpdateQuantity(itemID, userID, quantity)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrCartItemNotFound
	}
	item.Quantity = quantity
	return item, nil
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(userID, itemID uint) error {
	affected, err := s.cartRepo.DeleteByIDAndUser(itemID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	return s.cartRepo.ClearByUser(userID)
}
