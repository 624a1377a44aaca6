package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Creator struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	Location  string `json:"location,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type Item struct {
	ID        string          `json:"id"`
	CreatorID string          `json:"creator_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price"`
	WidthCm   *float64        `json:"width_cm,omitempty"`
	HeightCm  *float64        `json:"height_cm,omitempty"`
	Size      string          `json:"size,omitempty"`
	Colors    []string        `json:"colors"`
	MainImage string          `json:"main_image,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// HasColor reports whether any entry of Colors equals color. Colors may hold
// duplicates; a match is still a single yes.
func (i Item) HasColor(color string) bool {
	for _, c := range i.Colors {
		if c == color {
			return true
		}
	}
	return false
}

type ItemImage struct {
	ID       string `json:"id"`
	ItemID   string `json:"item_id"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	MinRating = 1
	MaxRating = 5
)

type RatingSummary struct {
	Count        int             `json:"count"`
	Average      decimal.Decimal `json:"average"`
	Distribution map[int]int     `json:"distribution"`
}

// ItemDetail is the item page view: the listing, its gallery and its reviews
// reduced to a rating summary.
type ItemDetail struct {
	Item   Item          `json:"item"`
	Images []ItemImage   `json:"images"`
	Rating RatingSummary `json:"rating"`
}
