package model

import "time"

// LocalizedString carries the RU/EN/HY variants of a piece of site content.
type LocalizedString struct {
	EN string `json:"en,omitempty"`
	RU string `json:"ru,omitempty"`
	HY string `json:"hy,omitempty"`
}

// Resolve picks the display variant: ru, then en, then hy, then the fallback.
func (s LocalizedString) Resolve(fallback string) string {
	switch {
	case s.RU != "":
		return s.RU
	case s.EN != "":
		return s.EN
	case s.HY != "":
		return s.HY
	default:
		return fallback
	}
}

// Pricing is a purchasable plan on the marketing site.
type Pricing struct {
	ID          string
	Title       LocalizedString
	Description LocalizedString
	Price       int64 // kopecks
	Order       int
	IsPopular   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DefaultPricingTitle is used when a pricing has no title in any language.
const DefaultPricingTitle = "Тариф"

func (p *Pricing) DisplayTitle() string {
	return p.Title.Resolve(DefaultPricingTitle)
}
