package server

import (
	"storefront/internal/infra/memory"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

// Repos はusecaseに渡すリポジトリ一式
type Repos struct {
	Users         repo.UserRepository
	RefreshTokens repo.RefreshTokenRepository
	Products      repo.ProductRepository
	Carts         repo.CartRepository
	Wishlists     repo.WishlistRepository
	Orders        repo.OrderRepository
	Settings      repo.SettingsRepository
	AuditLogs     repo.AuditLogRepository
	Tx            repo.TransactionManager
}

func MemoryRepos(s *memory.Store) Repos {
	return Repos{
		Users:         s.Users(),
		RefreshTokens: s.RefreshTokens(),
		Products:      s.Products(),
		Carts:         s.Carts(),
		Wishlists:     s.Wishlists(),
		Orders:        s.Orders(),
		Settings:      s.Settings(),
		AuditLogs:     s.AuditLogs(),
		Tx:            s,
	}
}

func GormRepos(gdb *gorm.DB) Repos {
	return Repos{
		Users:         infraRepo.NewUserGormRepository(gdb),
		RefreshTokens: infraRepo.NewRefreshTokenRepository(gdb),
		Products:      infraRepo.NewProductGormRepository(gdb),
		Carts:         infraRepo.NewCartGormRepository(gdb),
		Wishlists:     infraRepo.NewWishlistGormRepository(gdb),
		Orders:        infraRepo.NewOrderGormRepository(gdb),
		Settings:      infraRepo.NewSettingsGormRepository(gdb),
		AuditLogs:     infraRepo.NewAuditLogGormRepository(gdb),
		Tx:            infraRepo.NewTxManagerGorm(gdb),
	}
}
