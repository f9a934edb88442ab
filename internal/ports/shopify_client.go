package ports

import (
	"context"

	shopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient defines the Shopify Admin API operations used to list the
// catalog on a Shopify sales channel.
type ShopifyClient interface {
	GetProduct(ctx context.Context, productID uint64) (*shopify.Product, error)
	CreateProduct(ctx context.Context, product *shopify.Product) (*shopify.Product, error)
	UpdateProduct(ctx context.Context, product *shopify.Product) (*shopify.Product, error)
}
