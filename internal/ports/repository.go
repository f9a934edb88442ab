package ports

import (
	"context"

	"fishy-friend-storefront/internal/domain"
)

// Read methods return (nil, nil) when the record does not exist.

// ProductFilter narrows product listings.
type ProductFilter struct {
	Kind          domain.ProductKind
	CategoryID    string
	BreedID       string
	Search        string
	FeaturedOnly  bool
	AvailableOnly bool
}

// CatalogRepository defines persistence for categories, breeds, products,
// combos and limited offers.
type CatalogRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context, categoryType domain.CategoryType) ([]*domain.Category, error)

	CreateBreed(ctx context.Context, breed *domain.Breed) error
	GetBreed(ctx context.Context, id string) (*domain.Breed, error)
	DeleteBreed(ctx context.Context, id string) error
	ListBreeds(ctx context.Context, categoryID string) ([]*domain.Breed, error)

	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	// SetShopifyProductID and SetFeatured write a single field and leave
	// stock and the rest of the document alone.
	SetShopifyProductID(ctx context.Context, productID string, shopifyID uint64) error
	SetFeatured(ctx context.Context, productID string, featured bool) error
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error)
	CountProductsInCategory(ctx context.Context, categoryID string) (int64, error)
	// AdjustStock adds delta to the stock of a product. A negative delta
	// only applies when enough stock remains; otherwise domain.ErrOutOfStock.
	AdjustStock(ctx context.Context, productID string, delta int) error

	CreateCombo(ctx context.Context, combo *domain.Combo) error
	GetCombo(ctx context.Context, id string) (*domain.Combo, error)
	UpdateCombo(ctx context.Context, combo *domain.Combo) error
	DeleteCombo(ctx context.Context, id string) error
	ListCombos(ctx context.Context, activeOnly bool) ([]*domain.Combo, error)
	GetCombosByIDs(ctx context.Context, ids []string) (map[string]*domain.Combo, error)

	CreateOffer(ctx context.Context, offer *domain.LimitedOffer) error
	GetOffer(ctx context.Context, id string) (*domain.LimitedOffer, error)
	UpdateOffer(ctx context.Context, offer *domain.LimitedOffer) error
	DeleteOffer(ctx context.Context, id string) error
	ListOffers(ctx context.Context, activeOnly bool) ([]*domain.LimitedOffer, error)
}

// CouponRepository defines persistence for coupons.
type CouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *domain.Coupon) error
	GetCoupon(ctx context.Context, id string) (*domain.Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error)
	UpdateCoupon(ctx context.Context, coupon *domain.Coupon) error
	DeleteCoupon(ctx context.Context, id string) error
	ListCoupons(ctx context.Context) ([]*domain.Coupon, error)
	// ReserveUsage increments TimesUsed only while the usage limit has not
	// been reached, and reports whether it did.
	ReserveUsage(ctx context.Context, couponID string) (bool, error)
	ReleaseUsage(ctx context.Context, couponID string) error
}

// CartRepository defines persistence for carts, one per customer.
type CartRepository interface {
	GetCart(ctx context.Context, customerID string) (*domain.Cart, error)
	SaveCart(ctx context.Context, cart *domain.Cart) error
	ClearCart(ctx context.Context, customerID string) error
}

// OrderRepository defines persistence for orders.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error)
	GetOrderByProviderOrderID(ctx context.Context, provider, providerOrderID string) (*domain.Order, error)
	// UpdateOrderIf stores order only while the stored copy is still in
	// state from. It reports false, without error, when another write got
	// there first; a missing order is domain.ErrNotFound.
	UpdateOrderIf(ctx context.Context, order *domain.Order, from domain.OrderState) (bool, error)
	// ListOrders returns matching orders, newest first.
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error)
}

// PaymentEventRepository is the persisted log of provider webhook events.
type PaymentEventRepository interface {
	RecordEvent(ctx context.Context, record *domain.PaymentEventRecord) error
	GetEvent(ctx context.Context, provider, eventID string) (*domain.PaymentEventRecord, error)
	ListEventsForOrder(ctx context.Context, orderID string) ([]*domain.PaymentEventRecord, error)
}

// ReviewRepository defines persistence for order reviews.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	GetReviewForOrder(ctx context.Context, customerID, orderID string) (*domain.Review, error)
	UpdateReview(ctx context.Context, review *domain.Review) error
	DeleteReview(ctx context.Context, id string) error
	ListReviews(ctx context.Context, approvedOnly bool) ([]*domain.Review, error)
}

// CustomerRepository defines persistence for customer accounts.
type CustomerRepository interface {
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	SaveCustomer(ctx context.Context, customer *domain.Customer) error
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
}

// BlogRepository defines persistence for blog posts. Slugs are unique.
type BlogRepository interface {
	CreatePost(ctx context.Context, post *domain.BlogPost) error
	GetPost(ctx context.Context, id string) (*domain.BlogPost, error)
	GetPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
	UpdatePost(ctx context.Context, post *domain.BlogPost) error
	DeletePost(ctx context.Context, id string) error
	// ListPosts returns posts newest published first.
	ListPosts(ctx context.Context, publishedOnly bool) ([]*domain.BlogPost, error)
}

// StockAlertRepository stores the staff stock alerts.
type StockAlertRepository interface {
	CreateAlert(ctx context.Context, alert *domain.StockAlert) error
	// HasUnread reports whether productID already has an unread alert at level.
	HasUnread(ctx context.Context, productID string, level domain.AlertLevel) (bool, error)
	ListAlerts(ctx context.Context, unreadOnly bool) ([]*domain.StockAlert, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
}

// ShippingSettingsRepository stores the single shipping settings document.
type ShippingSettingsRepository interface {
	GetShippingSettings(ctx context.Context) (*domain.ShippingSettings, error)
	SaveShippingSettings(ctx context.Context, settings *domain.ShippingSettings) error
}
