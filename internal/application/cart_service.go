package application

import (
	"context"
	"fmt"
	"time"

	"fishy-friend-storefront/internal/domain"
	"fishy-friend-storefront/internal/ports"

	"github.com/rs/zerolog"
)

// CartService manages customer carts.
type CartService struct {
	carts   ports.CartRepository
	catalog ports.CatalogRepository
	logger  zerolog.Logger
	now     clock
}

// NewCartService creates a new cart service
func NewCartService(carts ports.CartRepository, catalog ports.CatalogRepository, logger zerolog.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, logger: logger, now: time.Now}
}

// AddItemInput identifies what to add. Exactly one of ProductID and ComboID is set.
type AddItemInput struct {
	ProductID string `json:"product_id"`
	ComboID   string `json:"combo_id"`
	Quantity  int    `json:"quantity"`
}

func (s *CartService) load(ctx context.Context, customerID string) (*domain.Cart, error) {
	cart, err := s.carts.GetCart(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart == nil {
		cart = &domain.Cart{CustomerID: customerID}
	}
	return cart, nil
}

// Priced returns the customer's cart resolved against the current catalog.
func (s *CartService) Priced(ctx context.Context, customerID string) (*domain.Cart, *domain.PricedCart, error) {
	cart, err := s.load(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	priced, err := priceCart(ctx, s.catalog, cart)
	if err != nil {
		return nil, nil, err
	}
	return cart, priced, nil
}

// AddItem puts a product or combo in the cart, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, customer *domain.Customer, in AddItemInput) (*domain.PricedCart, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	if (in.ProductID == "") == (in.ComboID == "") {
		return nil, domain.NewValidationError("item", "Choose a product or a combo.")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	candidate := &domain.CartLine{ProductID: in.ProductID, ComboID: in.ComboID, Quantity: in.Quantity}
	if in.ComboID != "" {
		candidate.Kind = domain.LineCombo
		if in.Quantity < 1 {
			return nil, domain.NewValidationError("quantity", "Invalid quantity.")
		}
		combo, err := s.catalog.GetCombo(ctx, in.ComboID)
		if err != nil {
			return nil, fmt.Errorf("failed to get combo: %w", err)
		}
		if combo == nil {
			return nil, domain.ErrNotFound
		}
		products, err := s.catalog.GetProductsByIDs(ctx, combo.ProductIDs())
		if err != nil {
			return nil, fmt.Errorf("failed to load combo products: %w", err)
		}
		if !combo.Visible(products) {
			return nil, domain.NewValidationError("combo_id", "This combo is currently unavailable.")
		}
	} else {
		product, err := s.catalog.GetProduct(ctx, in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil || !product.Available {
			return nil, domain.ErrNotFound
		}
		candidate.Kind = domain.LineKindFor(product.Kind)
		if err := checkQuantity(product, in.Quantity); err != nil {
			return nil, err
		}
	}

	cart, err := s.load(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if line := cart.LineFor(candidate); line != nil {
		line.Quantity += in.Quantity
	} else {
		candidate.ID = newID()
		candidate.AddedAt = now
		cart.Lines = append(cart.Lines, candidate)
	}
	cart.UpdatedAt = now
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return priceCart(ctx, s.catalog, cart)
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, customer *domain.Customer, lineID string, quantity int) (*domain.PricedCart, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	cart, err := s.load(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	line := cart.Line(lineID)
	if line == nil {
		return nil, domain.ErrNotFound
	}
	if quantity <= 0 {
		cart.Remove(lineID)
	} else {
		if line.Kind != domain.LineCombo {
			product, err := s.catalog.GetProduct(ctx, line.ProductID)
			if err != nil {
				return nil, fmt.Errorf("failed to get product: %w", err)
			}
			if product != nil {
				if err := checkQuantity(product, quantity); err != nil {
					return nil, err
				}
			}
		}
		line.Quantity = quantity
	}
	cart.UpdatedAt = s.now()
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return priceCart(ctx, s.catalog, cart)
}

// RemoveItem deletes a line from the customer's cart.
func (s *CartService) RemoveItem(ctx context.Context, customer *domain.Customer, lineID string) (*domain.PricedCart, error) {
	if err := requireCustomer(customer); err != nil {
		return nil, err
	}
	cart, err := s.load(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(lineID) {
		return nil, domain.ErrNotFound
	}
	cart.UpdatedAt = s.now()
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return priceCart(ctx, s.catalog, cart)
}

func checkQuantity(product *domain.Product, quantity int) error {
	if quantity < 1 {
		return domain.NewValidationError("quantity", "Invalid quantity.")
	}
	if quantity < product.MinimumOrderQuantity {
		return domain.NewValidationError("quantity", "Minimum order quantity for %s is %d.", product.Name, product.MinimumOrderQuantity)
	}
	return nil
}

// catalogFor loads every product and combo the cart refers to, including
// the products inside combos.
func catalogFor(ctx context.Context, catalog ports.CatalogRepository, cart *domain.Cart) (map[string]*domain.Product, map[string]*domain.Combo, error) {
	var productIDs, comboIDs []string
	for _, line := range cart.Lines {
		if line.Kind == domain.LineCombo {
			comboIDs = append(comboIDs, line.ComboID)
		} else {
			productIDs = append(productIDs, line.ProductID)
		}
	}
	combos, err := catalog.GetCombosByIDs(ctx, comboIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load combos: %w", err)
	}
	for _, c := range combos {
		productIDs = append(productIDs, c.ProductIDs()...)
	}
	products, err := catalog.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, combos, nil
}

func priceCart(ctx context.Context, catalog ports.CatalogRepository, cart *domain.Cart) (*domain.PricedCart, error) {
	products, combos, err := catalogFor(ctx, catalog, cart)
	if err != nil {
		return nil, err
	}
	return domain.PriceCart(cart, products, combos), nil
}
