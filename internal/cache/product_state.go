package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	productDetailCacheTTL = 5 * time.Minute
	productListCacheTTL   = 1 * time.Minute
)

func productDetailKey(productID uint) string {
	return fmt.Sprintf("product:detail:%d", productID)
}

const productListKeyPrefix = "product:list:"

// GetProductDetail 读取商品详情缓存
func GetProductDetail(ctx context.Context, productID uint, dest interface{}) (bool, error) {
	if productID == 0 {
		return false, nil
	}
	return GetJSON(ctx, productDetailKey(productID), dest)
}

// SetProductDetail 写入商品详情缓存
func SetProductDetail(ctx context.Context, productID uint, value interface{}) error {
	if productID == 0 {
		return nil
	}
	return SetJSON(ctx, productDetailKey(productID), value, productDetailCacheTTL)
}

// DelProductDetail 删除商品详情缓存
func DelProductDetail(ctx context.Context, productID uint) error {
	if productID == 0 {
		return nil
	}
	return Del(ctx, productDetailKey(productID))
}

// GetProductList 读取商品列表缓存，key 为按筛选条件生成的签名
func GetProductList(ctx context.Context, signature string, dest interface{}) (bool, error) {
	if signature == "" {
		return false, nil
	}
	return GetJSON(ctx, productListKeyPrefix+signature, dest)
}

// SetProductList 写入商品列表缓存
func SetProductList(ctx context.Context, signature string, value interface{}) error {
	if signature == "" {
		return nil
	}
	return SetJSON(ctx, productListKeyPrefix+signature, value, productListCacheTTL)
}

// InvalidateProductLists 清空所有商品列表缓存
// 商品增删改或库存变化后调用，避免列表读到旧数据
func InvalidateProductLists(ctx context.Context) error {
	return DelByPrefix(ctx, productListKeyPrefix)
}
