package domain

// ProductRepository описывает требования к хранилищу каталога.
type ProductRepository interface {
	// Create сохраняет новый товар. Возвращает ErrProductNameTaken,
	// если название уже занято.
	Create(product Product) error
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	// GetMany возвращает найденные товары по списку идентификаторов.
	// Отсутствующие идентификаторы не являются ошибкой: вызывающая сторона
	// сама решает, как их трактовать.
	GetMany(ids []string) (map[string]Product, error)
	// List возвращает все товары каталога в стабильном порядке.
	List() ([]Product, error)
	// AdjustStock изменяет остаток на delta (может быть отрицательной) и
	// возвращает обновлённый товар. Уход ниже нуля — ErrStockNegative.
	AdjustStock(id string, delta int32) (Product, error)
}

// CartRepository хранит корзины клиентов.
type CartRepository interface {
	// GetByCustomer возвращает корзину клиента или ErrCartNotFound.
	GetByCustomer(customerID string) (Cart, error)
	// Save создаёт или перезаписывает корзину целиком, включая карту позиций.
	Save(cart Cart) error
}

// OrderRepository описывает read/update-сторону хранилища заказов.
type OrderRepository interface {
	// Get возвращает заказ с позициями, платежом и доставкой или ErrOrderNotFound.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы клиента с опциональным ограничением на количество.
	ListByCustomer(customerID string, limit int) ([]Order, error)
	// Save применяет обновления к агрегату (заказ + платёж + доставка) в одной
	// транзакции с учётом optimistic locking по версии заказа.
	Save(order Order) error
}

// CheckoutRepository владеет транзакционными мутациями, затрагивающими
// одновременно заказ и остатки каталога.
type CheckoutRepository interface {
	// CreateOrder сохраняет агрегат и применяет списания остатков одной
	// атомарной транзакцией. Любая ошибка откатывает все записи: частично
	// списанного остатка не существует. Возможные ошибки:
	// *InsufficientStockError, ErrStockConflict, *ProductsNotFoundError.
	CreateOrder(order Order, reservations []StockReservation) error
	// CancelOrder возвращает остатки по каждой позиции и записывает статусы
	// CANCELADO для заказа, платежа и доставки — всё одной транзакцией.
	// order передаётся уже с выставленными конечными статусами.
	CancelOrder(order Order) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID string) ([]TimelineEvent, error)
}

// CustomerStore — внешний справочник клиентов; ядро пользуется только
// проверкой существования.
type CustomerStore interface {
	Exists(customerID string) (bool, error)
}
