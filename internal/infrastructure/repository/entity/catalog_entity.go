package entity

import (
	"time"

	"fishy-friend-storefront/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoCategoryDoc represents a category in MongoDB
type MongoCategoryDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	Type        string    `bson:"type"`
	ImageURL    string    `bson:"imageUrl,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func (d *MongoCategoryDoc) ToDomain() *domain.Category {
	return &domain.Category{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Type:        domain.CategoryType(d.Type),
		ImageURL:    d.ImageURL,
		CreatedAt:   d.CreatedAt,
	}
}

func MongoCategoryDocFromDomain(c *domain.Category) *MongoCategoryDoc {
	return &MongoCategoryDoc{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Type:        string(c.Type),
		ImageURL:    c.ImageURL,
		CreatedAt:   c.CreatedAt,
	}
}

// MongoBreedDoc represents a fish breed in MongoDB
type MongoBreedDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	CategoryID  string    `bson:"categoryId"`
	Description string    `bson:"description,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func (d *MongoBreedDoc) ToDomain() *domain.Breed {
	return &domain.Breed{ID: d.ID, Name: d.Name, CategoryID: d.CategoryID, Description: d.Description, CreatedAt: d.CreatedAt}
}

func MongoBreedDocFromDomain(b *domain.Breed) *MongoBreedDoc {
	return &MongoBreedDoc{ID: b.ID, Name: b.Name, CategoryID: b.CategoryID, Description: b.Description, CreatedAt: b.CreatedAt}
}

// MongoProductDoc represents a fish, accessory or plant in MongoDB
type MongoProductDoc struct {
	ID                   string                `bson:"_id"`
	Kind                 string                `bson:"kind"`
	Name                 string                `bson:"name"`
	Description          string                `bson:"description,omitempty"`
	CategoryID           string                `bson:"categoryId,omitempty"`
	BreedID              string                `bson:"breedId,omitempty"`
	Price                primitive.Decimal128  `bson:"price"`
	SizeInches           *primitive.Decimal128 `bson:"sizeInches,omitempty"`
	WeightKg             *primitive.Decimal128 `bson:"weightKg,omitempty"`
	StockQuantity        int                   `bson:"stockQuantity"`
	MinimumOrderQuantity int                   `bson:"minimumOrderQuantity"`
	ImageURL             string                `bson:"imageUrl,omitempty"`
	Available            bool                  `bson:"available"`
	Featured             bool                  `bson:"featured"`
	DisplayOrder         int                   `bson:"displayOrder"`
	ShopifyProductID     uint64                `bson:"shopifyProductId,omitempty"`
	CreatedAt            time.Time             `bson:"createdAt"`
	UpdatedAt            time.Time             `bson:"updatedAt"`
}

func (d *MongoProductDoc) ToDomain() *domain.Product {
	return &domain.Product{
		ID:                   d.ID,
		Kind:                 domain.ProductKind(d.Kind),
		Name:                 d.Name,
		Description:          d.Description,
		CategoryID:           d.CategoryID,
		BreedID:              d.BreedID,
		Price:                fromDecimal128(d.Price),
		SizeInches:           fromDecimal128Ptr(d.SizeInches),
		WeightKg:             fromDecimal128Ptr(d.WeightKg),
		StockQuantity:        d.StockQuantity,
		MinimumOrderQuantity: d.MinimumOrderQuantity,
		ImageURL:             d.ImageURL,
		Available:            d.Available,
		Featured:             d.Featured,
		DisplayOrder:         d.DisplayOrder,
		ShopifyProductID:     d.ShopifyProductID,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func MongoProductDocFromDomain(p *domain.Product) *MongoProductDoc {
	return &MongoProductDoc{
		ID:                   p.ID,
		Kind:                 string(p.Kind),
		Name:                 p.Name,
		Description:          p.Description,
		CategoryID:           p.CategoryID,
		BreedID:              p.BreedID,
		Price:                toDecimal128(p.Price),
		SizeInches:           toDecimal128Ptr(p.SizeInches),
		WeightKg:             toDecimal128Ptr(p.WeightKg),
		StockQuantity:        p.StockQuantity,
		MinimumOrderQuantity: p.MinimumOrderQuantity,
		ImageURL:             p.ImageURL,
		Available:            p.Available,
		Featured:             p.Featured,
		DisplayOrder:         p.DisplayOrder,
		ShopifyProductID:     p.ShopifyProductID,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// MongoComboItemDoc is one product inside a combo.
type MongoComboItemDoc struct {
	ProductID string `bson:"productId"`
	Quantity  int    `bson:"quantity"`
}

// MongoComboDoc represents a combo bundle in MongoDB
type MongoComboDoc struct {
	ID             string                `bson:"_id"`
	Title          string                `bson:"title"`
	Description    string                `bson:"description,omitempty"`
	BundlePrice    *primitive.Decimal128 `bson:"bundlePrice,omitempty"`
	CategoryID     string                `bson:"categoryId,omitempty"`
	Active         bool                  `bson:"active"`
	ShowOnHomepage bool                  `bson:"showOnHomepage"`
	ShowAsBanner   bool                  `bson:"showAsBanner"`
	BannerImageURL string                `bson:"bannerImageUrl,omitempty"`
	WeightKg       *primitive.Decimal128 `bson:"weightKg,omitempty"`
	Items          []MongoComboItemDoc   `bson:"items"`
	CreatedAt      time.Time             `bson:"createdAt"`
	UpdatedAt      time.Time             `bson:"updatedAt"`
}

func (d *MongoComboDoc) ToDomain() *domain.Combo {
	items := make([]domain.ComboItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, domain.ComboItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return &domain.Combo{
		ID:             d.ID,
		Title:          d.Title,
		Description:    d.Description,
		BundlePrice:    fromDecimal128Ptr(d.BundlePrice),
		CategoryID:     d.CategoryID,
		Active:         d.Active,
		ShowOnHomepage: d.ShowOnHomepage,
		ShowAsBanner:   d.ShowAsBanner,
		BannerImageURL: d.BannerImageURL,
		WeightKg:       fromDecimal128Ptr(d.WeightKg),
		Items:          items,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func MongoComboDocFromDomain(c *domain.Combo) *MongoComboDoc {
	items := make([]MongoComboItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, MongoComboItemDoc{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return &MongoComboDoc{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		BundlePrice:    toDecimal128Ptr(c.BundlePrice),
		CategoryID:     c.CategoryID,
		Active:         c.Active,
		ShowOnHomepage: c.ShowOnHomepage,
		ShowAsBanner:   c.ShowAsBanner,
		BannerImageURL: c.BannerImageURL,
		WeightKg:       toDecimal128Ptr(c.WeightKg),
		Items:          items,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// MongoOfferDoc represents a limited-time offer banner in MongoDB
type MongoOfferDoc struct {
	ID             string     `bson:"_id"`
	Title          string     `bson:"title"`
	Description    string     `bson:"description,omitempty"`
	DiscountText   string     `bson:"discountText"`
	ImageURL       string     `bson:"imageUrl,omitempty"`
	BgColor        string     `bson:"bgColor,omitempty"`
	ProductID      string     `bson:"productId,omitempty"`
	StartTime      *time.Time `bson:"startTime,omitempty"`
	EndTime        *time.Time `bson:"endTime,omitempty"`
	Active         bool       `bson:"active"`
	ShowOnHomepage bool       `bson:"showOnHomepage"`
	CreatedAt      time.Time  `bson:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt"`
}

func (d *MongoOfferDoc) ToDomain() *domain.LimitedOffer {
	return &domain.LimitedOffer{
		ID:             d.ID,
		Title:          d.Title,
		Description:    d.Description,
		DiscountText:   d.DiscountText,
		ImageURL:       d.ImageURL,
		BgColor:        d.BgColor,
		ProductID:      d.ProductID,
		StartTime:      d.StartTime,
		EndTime:        d.EndTime,
		Active:         d.Active,
		ShowOnHomepage: d.ShowOnHomepage,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func MongoOfferDocFromDomain(o *domain.LimitedOffer) *MongoOfferDoc {
	return &MongoOfferDoc{
		ID:             o.ID,
		Title:          o.Title,
		Description:    o.Description,
		DiscountText:   o.DiscountText,
		ImageURL:       o.ImageURL,
		BgColor:        o.BgColor,
		ProductID:      o.ProductID,
		StartTime:      o.StartTime,
		EndTime:        o.EndTime,
		Active:         o.Active,
		ShowOnHomepage: o.ShowOnHomepage,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}
