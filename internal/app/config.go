package app

// StorageDriver определяет реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	// HTTPAddr — адрес REST API.
	HTTPAddr string
	// OpsAddr — адрес служебного сервера: /metrics, /healthz, /livez.
	OpsAddr string

	StorageDriver StorageDriver
	PostgresDSN   string
	// PostgresAutoMigrate применяет up-миграции при старте.
	PostgresAutoMigrate bool

	// KafkaBrokers — список брокеров через запятую; пусто — события не публикуются.
	KafkaBrokers string

	// DevCustomers — идентификаторы клиентов, регистрируемые в memory-справочнике
	// при старте без PostgreSQL. В продакшене справочник живёт в БД.
	DevCustomers []string
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних
// зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		OpsAddr:             ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
	}
}
