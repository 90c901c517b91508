package catalog

import (
	"errors"
	"time"
)

// Area is a closed set of hotel zones a product can be assigned to.
type Area string

const (
	AreaGuestRoom    Area = "GUEST_ROOM"
	AreaBathroom     Area = "BATHROOM"
	AreaLobby        Area = "LOBBY"
	AreaRestaurant   Area = "RESTAURANT"
	AreaHousekeeping Area = "HOUSEKEEPING"
	AreaBedroom      Area = "BEDROOM"
	AreaSpa          Area = "SPA"
)

// AllAreas lists every recognized area.
func AllAreas() []Area {
	return []Area{
		AreaGuestRoom, AreaBathroom, AreaLobby,
		AreaRestaurant, AreaHousekeeping, AreaBedroom, AreaSpa,
	}
}

// IsValid reports whether a is one of the recognized areas.
func (a Area) IsValid() bool {
	switch a {
	case AreaGuestRoom, AreaBathroom, AreaLobby,
		AreaRestaurant, AreaHousekeeping, AreaBedroom, AreaSpa:
		return true
	}
	return false
}

// Category groups products. Slug is unique and URL-safe.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a supply item offered in the catalog. Code is the unique
// merchant-facing SKU.
type Product struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	CategoryID  string         `json:"category_id"`
	Price       int64          `json:"price"` // minor units
	Unit        string         `json:"unit,omitempty"`
	IsActive    bool           `json:"is_active"`
	Areas       []Area         `json:"areas,omitempty"`
	Images      []ProductImage `json:"images,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProductImage is a stored picture of a product. URL points at the blob store.
type ProductImage struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrInvalidInput = errors.New("invalid input")
)
