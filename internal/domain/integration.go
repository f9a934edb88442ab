package domain

import "time"

// ShopifyVendor is the vendor name used for products listed on Shopify.
const ShopifyVendor = "Fishy Friend Aquatics"

// ShopifySKU returns the SKU a product is listed under on Shopify.
func ShopifySKU(p *Product) string {
	return "FFA-" + string(p.Kind) + "-" + p.ID
}

// SyncReport summarises one catalog export to Shopify.
type SyncReport struct {
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
}
