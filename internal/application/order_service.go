package application

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderService serves order history to customers and order management to staff.
type OrderService struct {
	orders    ports.OrderRepository
	catalog   ports.CatalogRepository
	customers ports.CustomerRepository
	events    orderEvents
	logger    zerolog.Logger
	now       clock
}

// NewOrderService creates a new order service
func NewOrderService(
	orders ports.OrderRepository,
	catalog ports.CatalogRepository,
	customers ports.CustomerRepository,
	publisher ports.EventPublisher,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		catalog:   catalog,
		customers: customers,
		events:    orderEvents{publisher: publisher, logger: logger, now: time.Now},
		logger:    logger,
		now:       time.Now,
	}
}

// ListForCustomer returns the customer's orders, newest first.
func (s *OrderService) ListForCustomer(ctx context.Context, customer *domain.Customer) ([]*domain.Order, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListOrders(ctx, domain.OrderFilter{CustomerID: customer.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetForCustomer returns one of the customer's orders.
func (s *OrderService) GetForCustomer(ctx context.Context, customer *domain.Customer, orderID string) (*domain.Order, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customer.ID {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// Get returns any order.
func (s *OrderService) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// Cancel lets a customer cancel an order that has not shipped. Stock is
// returned to the shelf.
func (s *OrderService) Cancel(ctx context.Context, customer *domain.Customer, orderID string) (*domain.Order, error) {
	order, err := s.GetForCustomer(ctx, customer, orderID)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, order, func(o *domain.Order) error {
		if !o.CustomerCancellable() {
			return fmt.Errorf("%w: orders can only be cancelled before they ship", domain.ErrInvalidTransition)
		}
		return nil
	})
}

// cancel stores the cancellation and restocks exactly once; a request that
// loses the race sees the cancelled order and fails the transition.
func (s *OrderService) cancel(ctx context.Context, order *domain.Order, allowed func(*domain.Order) error) (*domain.Order, error) {
	_, err := changeOrder(ctx, s.orders, order, func(o *domain.Order) (bool, error) {
		if allowed != nil {
			if err := allowed(o); err != nil {
				return false, err
			}
		}
		return true, o.TransitionTo(domain.OrderCancelled, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.restock(ctx, order)
	s.logger.Info().Str("orderNumber", order.Number).Str("by", actor(ctx)).Msg("Order cancelled")
	s.events.publish(ctx, domain.EventOrderCancelled, order)
	return order, nil
}

func (s *OrderService) restock(ctx context.Context, order *domain.Order) {
	combos := make(map[string]*domain.Combo)
	for _, item := range order.Items {
		if item.Kind != domain.LineCombo {
			s.adjust(ctx, item.ProductID, item.Quantity)
			continue
		}
		combo, ok := combos[item.ComboID]
		if !ok {
			c, err := s.catalog.GetCombo(ctx, item.ComboID)
			if err != nil || c == nil {
				s.logger.Warn().Err(err).Str("comboId", item.ComboID).Msg("Cannot restock a combo that no longer exists")
				continue
			}
			combo, combos[item.ComboID] = c, c
		}
		for _, ci := range combo.Items {
			s.adjust(ctx, ci.ProductID, ci.Quantity*item.Quantity)
		}
	}
}

func (s *OrderService) adjust(ctx context.Context, productID string, qty int) {
	if err := s.catalog.AdjustStock(ctx, productID, qty); err != nil {
		s.logger.Warn().Err(err).Str("productId", productID).Int("quantity", qty).Msg("Failed to restock product")
	}
}

// List returns orders matching filter for staff.
func (s *OrderService) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	orders, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order along the fulfilment workflow.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, next domain.OrderStatus) (*domain.Order, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if next == domain.OrderCancelled {
		return s.cancel(ctx, order, nil)
	}
	prev := order.Status
	_, err = changeOrder(ctx, s.orders, order, func(o *domain.Order) (bool, error) {
		prev = o.Status
		return true, o.TransitionTo(next, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("orderNumber", order.Number).
		Str("from", string(prev)).
		Str("to", string(next)).
		Str("by", actor(ctx)).
		Msg("Order status updated")
	return order, nil
}

var csvHeader = []string{
	"Order Number", "Date", "Customer", "Items", "Subtotal", "Discount",
	"Delivery", "Final Amount", "Status", "Payment Status", "Payment Method",
}

// ExportCSV writes matching orders as CSV.
func (s *OrderService) ExportCSV(ctx context.Context, filter domain.OrderFilter, w io.Writer) error {
	orders, err := s.List(ctx, filter)
	if err != nil {
		return err
	}
	names := make(map[string]string)
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	for _, o := range orders {
		name, ok := names[o.CustomerID]
		if !ok {
			name = o.CustomerID
			if c, err := s.customers.GetCustomer(ctx, o.CustomerID); err == nil && c != nil {
				name = c.Name
				if name == "" {
					name = c.Email
				}
			}
			names[o.CustomerID] = name
		}
		items := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			items = append(items, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
		}
		row := []string{
			o.Number,
			o.CreatedAt.Format("2006-01-02 15:04"),
			spreadsheetSafe(name),
			spreadsheetSafe(strings.Join(items, "; ")),
			o.TotalAmount.StringFixed(2),
			o.DiscountAmount.StringFixed(2),
			o.DeliveryCharge.StringFixed(2),
			o.FinalAmount.StringFixed(2),
			string(o.Status),
			string(o.PaymentStatus),
			string(o.PaymentMethod),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// spreadsheetSafe stops spreadsheet apps from evaluating free text as a
// formula.
func spreadsheetSafe(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// Dashboard is the back-office landing page.
type Dashboard struct {
	Orders   domain.OrderStats `json:"orders"`
	LowStock []*domain.Product `json:"low_stock"`
	Recent   []*domain.Order   `json:"recent_orders"`
}

const recentOrders = 10

// Dashboard counts orders per status, sums paid revenue and lists low stock.
func (s *OrderService) Dashboard(ctx context.Context) (*Dashboard, error) {
	orders, err := s.orders.ListOrders(ctx, domain.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	stats := domain.OrderStats{ByStatus: make(map[domain.OrderStatus]int), PaidRevenue: decimal.Zero}
	for _, o := range orders {
		stats.TotalOrders++
		stats.ByStatus[o.Status]++
		if o.Status == domain.OrderPending {
			stats.PendingOrders++
		}
		if o.PaymentStatus == domain.PaymentPaid {
			stats.PaidRevenue = stats.PaidRevenue.Add(o.FinalAmount)
		}
	}
	products, err := s.catalog.ListProducts(ctx, ports.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	var low []*domain.Product
	for _, p := range products {
		if p.StockQuantity < LowStockThreshold {
			low = append(low, p)
		}
	}
	recent := orders
	if len(recent) > recentOrders {
		recent = recent[:recentOrders]
	}
	return &Dashboard{Orders: stats, LowStock: low, Recent: recent}, nil
}

func actor(ctx context.Context) string {
	if staff := domain.StaffFromContext(ctx); staff != "" {
		return staff
	}
	if c := domain.CustomerFromContext(ctx); c != nil {
		return c.ID
	}
	return "system"
}
