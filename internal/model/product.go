package model

import "time"

// DefaultProductCTALabel is used when a product is created without one.
const DefaultProductCTALabel = "Ver oferta"

// Product is an offer listed on a user's public page. Price is kept as the
// display string the owner typed (or that was scraped), never parsed into a
// number for storage.
type Product struct {
	ID             int64  `json:"id"`
	OwnerID        int64  `json:"owner_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	URL            string `json:"url"`
	ImageURL       string `json:"image_url"`
	SourceImageURL string `json:"source_image_url"`
	Price          string `json:"price"`
	Tag            string `json:"tag"`
	Badge          string `json:"badge"`
	CTALabel       string `json:"cta_label"`

	// IsActive is cleared by the link guardian when the target URL dies.
	IsActive   bool `json:"is_active"`
	IsFeatured bool `json:"is_featured"`

	CreatedAt time.Time `json:"created_at"`
}

// ProductUpdate carries a partial product update. Nil fields are left untouched.
type ProductUpdate struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	URL            *string `json:"url"`
	ImageURL       *string `json:"image_url"`
	SourceImageURL *string `json:"source_image_url"`
	Price          *string `json:"price"`
	Tag            *string `json:"tag"`
	Badge          *string `json:"badge"`
	CTALabel       *string `json:"cta_label"`
	IsActive       *bool   `json:"is_active"`
	IsFeatured     *bool   `json:"is_featured"`
}

// Apply copies the non-nil fields onto p.
func (up ProductUpdate) Apply(p *Product) {
	if up.Title != nil {
		p.Title = *up.Title
	}
	if up.Description != nil {
		p.Description = *up.Description
	}
	if up.URL != nil {
		p.URL = *up.URL
	}
	if up.ImageURL != nil {
		p.ImageURL = *up.ImageURL
	}
	if up.SourceImageURL != nil {
		p.SourceImageURL = *up.SourceImageURL
	}
	if up.Price != nil {
		p.Price = *up.Price
	}
	if up.Tag != nil {
		p.Tag = *up.Tag
	}
	if up.Badge != nil {
		p.Badge = *up.Badge
	}
	if up.CTALabel != nil {
		p.CTALabel = *up.CTALabel
	}
	if up.IsActive != nil {
		p.IsActive = *up.IsActive
	}
	if up.IsFeatured != nil {
		p.IsFeatured = *up.IsFeatured
	}
}

// CardImage picks the image to show on a product card, preferring the
// owner-uploaded image over the scraped source image.
func (p Product) CardImage() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	return p.SourceImageURL
}
