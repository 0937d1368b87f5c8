package main

import (
	"os"

	"github.com/sneakerhead-api/internal/config"
	"github.com/sneakerhead-api/internal/logger"
	"github.com/sneakerhead-api/internal/models"
)

func moneyPtr(amount float64) *models.Money {
	m := models.NewMoneyFromFloat(amount)
	return &m
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员
	if err := models.InitDefaultAdmin(
		os.Getenv("SH_DEFAULT_ADMIN_USERNAME"),
		os.Getenv("SH_DEFAULT_ADMIN_EMAIL"),
		os.Getenv("SH_DEFAULT_ADMIN_PASSWORD"),
	); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	// 添加商品
	products := []models.Product{
		{
			Name:          "Air Jordan 1 Retro High OG",
			Description:   "The shoe that started it all. Premium leather upper with the classic high-top silhouette.",
			Price:         models.NewMoneyFromFloat(18500),
			ImageURL:      "/uploads/products/aj1-retro-high.jpg",
			Brand:         "Nike",
			Category:      "Basketball",
			CountInStock:  25,
			IsFeatured:    true,
			Sizes:         models.StringArray{"7", "8", "9", "10", "11", "12"},
			Colors:        models.StringArray{"Chicago", "Bred", "Royal"},
		},
		{
			Name:          "Nike Air Force 1 '07",
			Description:   "Crisp leather, bold colors and the perfect amount of flash to make you shine.",
			Price:         models.NewMoneyFromFloat(11000),
			DiscountPrice: moneyPtr(9500),
			ImageURL:      "/uploads/products/af1-07.jpg",
			Brand:         "Nike",
			Category:      "Lifestyle",
			CountInStock:  40,
			IsFeatured:    true,
			Sizes:         models.StringArray{"6", "7", "8", "9", "10", "11"},
			Colors:        models.StringArray{"White", "Black"},
		},
		{
			Name:          "Adidas Ultraboost 22",
			Description:   "Responsive Boost cushioning and a Primeknit upper built for long miles.",
			Price:         models.NewMoneyFromFloat(16500),
			ImageURL:      "/uploads/products/ultraboost-22.jpg",
			Brand:         "Adidas",
			Category:      "Running",
			CountInStock:  30,
			IsNew:         true,
			Sizes:         models.StringArray{"7", "8", "9", "10", "11"},
			Colors:        models.StringArray{"Core Black", "Cloud White", "Solar Yellow"},
		},
		{
			Name:          "Adidas Samba OG",
			Description:   "Born on the pitch, adopted by the streets. Full-grain leather with suede overlays.",
			Price:         models.NewMoneyFromFloat(9800),
			ImageURL:      "/uploads/products/samba-og.jpg",
			Brand:         "Adidas",
			Category:      "Lifestyle",
			CountInStock:  35,
			IsFeatured:    true,
			IsNew:         true,
			Sizes:         models.StringArray{"6", "7", "8", "9", "10"},
			Colors:        models.StringArray{"White/Black", "Black/White"},
		},
		{
			Name:          "New Balance 550",
			Description:   "The basketball classic from 1989, back with its clean lines and timeless blocking.",
			Price:         models.NewMoneyFromFloat(12500),
			DiscountPrice: moneyPtr(10900),
			ImageURL:      "/uploads/products/nb-550.jpg",
			Brand:         "New Balance",
			Category:      "Lifestyle",
			CountInStock:  20,
			Sizes:         models.StringArray{"7", "8", "9", "10", "11", "12"},
			Colors:        models.StringArray{"White/Green", "White/Grey"},
		},
		{
			Name:          "Converse Chuck 70 High",
			Description:   "The archival Chuck with premium canvas, higher rubber foxing and vintage details.",
			Price:         models.NewMoneyFromFloat(7500),
			ImageURL:      "/uploads/products/chuck-70-high.jpg",
			Brand:         "Converse",
			Category:      "Lifestyle",
			CountInStock:  50,
			Sizes:         models.StringArray{"5", "6", "7", "8", "9", "10", "11"},
			Colors:        models.StringArray{"Black", "Parchment"},
		},
		{
			Name:          "Nike Dunk Low Retro",
			Description:   "Created for the hardwood, taken to the streets. Classic color blocking on a low profile.",
			Price:         models.NewMoneyFromFloat(12000),
			ImageURL:      "/uploads/products/dunk-low-retro.jpg",
			Brand:         "Nike",
			Category:      "Skateboarding",
			CountInStock:  15,
			IsNew:         true,
			Sizes:         models.StringArray{"7", "8", "9", "10", "11"},
			Colors:        models.StringArray{"Panda", "University Blue"},
		},
		{
			Name:          "Vans Old Skool",
			Description:   "The first Vans with the iconic sidestripe. Sturdy canvas and suede uppers.",
			Price:         models.NewMoneyFromFloat(6800),
			DiscountPrice: moneyPtr(5900),
			ImageURL:      "/uploads/products/old-skool.jpg",
			Brand:         "Vans",
			Category:      "Skateboarding",
			CountInStock:  45,
			Sizes:         models.StringArray{"6", "7", "8", "9", "10", "11"},
			Colors:        models.StringArray{"Black/White", "Navy"},
		},
		{
			Name:          "Puma Suede Classic XXI",
			Description:   "The street legend since 1968, updated with a softer suede and refined tooling.",
			Price:         models.NewMoneyFromFloat(8200),
			ImageURL:      "/uploads/products/suede-classic.jpg",
			Brand:         "Puma",
			Category:      "Lifestyle",
			CountInStock:  28,
			Sizes:         models.StringArray{"7", "8", "9", "10"},
			Colors:        models.StringArray{"Red", "Black", "Peacoat"},
		},
		{
			Name:          "Asics Gel-Kayano 30",
			Description:   "Stability running with 4D Guidance System and plush FF Blast Plus Eco cushioning.",
			Price:         models.NewMoneyFromFloat(17800),
			ImageURL:      "/uploads/products/gel-kayano-30.jpg",
			Brand:         "Asics",
			Category:      "Running",
			CountInStock:  18,
			IsNew:         true,
			Sizes:         models.StringArray{"8", "9", "10", "11", "12"},
			Colors:        models.StringArray{"Black/Sheet Rock", "White/Blue"},
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", product.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Name, err)
			} else {
				stdLog.Printf("Created product: %s", product.Name)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Name)
		}
	}

	stdLog.Printf("Seed finished")
}
