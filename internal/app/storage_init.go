package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/grocery/internal/domain"
	"github.com/vladislavdragonenkov/grocery/internal/storage/memory"
	"github.com/vladislavdragonenkov/grocery/internal/storage/postgres"
)

// runtimeDependencies — набор репозиториев, собранный под выбранный драйвер.
type runtimeDependencies struct {
	products  domain.ProductRepository
	carts     domain.CartRepository
	orders    domain.OrderRepository
	checkout  domain.CheckoutRepository
	customers domain.CustomerStore
	timeline  domain.TimelineRepository

	// pgStore не nil только для postgres-драйвера; нужен для health-проверки
	// и закрытия подключения.
	pgStore *postgres.Store
}

// initRuntimeDependencies собирает репозитории поверх выбранного хранилища.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		return initMemoryDependencies(cfg, logger), nil
	case StorageDriverPostgres:
		return initPostgresDependencies(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

func initMemoryDependencies(cfg Config, logger *log.Entry) *runtimeDependencies {
	store := memory.NewStore()
	customers := memory.NewCustomerStore(store)
	for _, id := range cfg.DevCustomers {
		customers.Register(id)
	}
	if len(cfg.DevCustomers) > 0 {
		logger.WithField("customers", len(cfg.DevCustomers)).Info("зарегистрированы dev-клиенты")
	}

	return &runtimeDependencies{
		products:  memory.NewProductRepository(store),
		carts:     memory.NewCartRepository(store),
		orders:    memory.NewOrderRepository(store),
		checkout:  memory.NewCheckoutRepository(store),
		customers: customers,
		timeline:  memory.NewTimelineRepository(store),
	}
}

func initPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres driver requires a DSN")
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("миграции применены")
	}

	return &runtimeDependencies{
		products:  postgres.NewProductRepository(store),
		carts:     postgres.NewCartRepository(store),
		orders:    postgres.NewOrderRepository(store),
		checkout:  postgres.NewCheckoutRepository(store),
		customers: postgres.NewCustomerStore(store),
		timeline:  postgres.NewTimelineRepository(store),
		pgStore:   store,
	}, nil
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	if d.pgStore == nil {
		return
	}
	if err := d.pgStore.Close(); err != nil {
		logger.WithError(err).Warn("failed to close postgres store")
	}
}
