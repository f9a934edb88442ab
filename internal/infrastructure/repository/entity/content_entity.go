package entity

import (
	"time"

	"fishy-friend-storefront/internal/domain"
)

// MongoBlogPostDoc represents a blog post in MongoDB
type MongoBlogPostDoc struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Slug        string     `bson:"slug"`
	Author      string     `bson:"author,omitempty"`
	Excerpt     string     `bson:"excerpt,omitempty"`
	Content     string     `bson:"content"`
	ImageURL    string     `bson:"imageUrl,omitempty"`
	Published   bool       `bson:"published"`
	PublishedAt *time.Time `bson:"publishedAt,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func (d *MongoBlogPostDoc) ToDomain() *domain.BlogPost {
	return &domain.BlogPost{
		ID:          d.ID,
		Title:       d.Title,
		Slug:        d.Slug,
		Author:      d.Author,
		Excerpt:     d.Excerpt,
		Content:     d.Content,
		ImageURL:    d.ImageURL,
		Published:   d.Published,
		PublishedAt: d.PublishedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func MongoBlogPostDocFromDomain(p *domain.BlogPost) *MongoBlogPostDoc {
	return &MongoBlogPostDoc{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Author:      p.Author,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		ImageURL:    p.ImageURL,
		Published:   p.Published,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// MongoStockAlertDoc represents a staff stock alert in MongoDB
type MongoStockAlertDoc struct {
	ID          string    `bson:"_id"`
	ProductID   string    `bson:"productId"`
	ProductName string    `bson:"productName"`
	Level       string    `bson:"level"`
	Title       string    `bson:"title"`
	Message     string    `bson:"message"`
	Read        bool      `bson:"read"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func (d *MongoStockAlertDoc) ToDomain() *domain.StockAlert {
	return &domain.StockAlert{
		ID:          d.ID,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Level:       domain.AlertLevel(d.Level),
		Title:       d.Title,
		Message:     d.Message,
		Read:        d.Read,
		CreatedAt:   d.CreatedAt,
	}
}

func MongoStockAlertDocFromDomain(a *domain.StockAlert) *MongoStockAlertDoc {
	return &MongoStockAlertDoc{
		ID:          a.ID,
		ProductID:   a.ProductID,
		ProductName: a.ProductName,
		Level:       string(a.Level),
		Title:       a.Title,
		Message:     a.Message,
		Read:        a.Read,
		CreatedAt:   a.CreatedAt,
	}
}
