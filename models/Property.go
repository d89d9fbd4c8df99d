package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Property status values.
const (
	PropertyStatusRent = "rent"
	PropertyStatusSale = "sale"
)

// Property is a listed apartment/property. The slug is the public identifier
// used by the frontend; the numeric primary key stays internal.
type Property struct {
	gorm.Model
	Slug     string          `json:"slug" gorm:"uniqueIndex;not null"`
	Title    string          `json:"title" gorm:"not null"`
	Location string          `json:"location" gorm:"not null"`
	Price    decimal.Decimal `json:"price" gorm:"type:numeric(15,2);not null"`
	Currency string          `json:"currency" gorm:"type:varchar(10);default:'₦'"`
	Status   string          `json:"status" gorm:"type:varchar(10);default:'rent'"` // rent, sale
	Type     string          `json:"type"`

	// Structural attributes
	Area        *int `json:"area"`
	Guests      *int `json:"guests"` // max guest capacity, nil when untracked
	Bedrooms    int  `json:"bedrooms" gorm:"default:1"`
	Bathrooms   int  `json:"bathrooms" gorm:"default:1"`
	LivingRooms int  `json:"living_rooms" gorm:"default:1"`
	Garages     *int `json:"garages"`
	Units       *int `json:"units"`

	Description string         `json:"description"`
	Amenities   datatypes.JSON `json:"amenities" gorm:"type:jsonb"`

	// Management
	Entity  string `json:"entity"`
	AgentID *uint  `json:"agent_id"`
	Agent   *Agent `json:"agent,omitempty" gorm:"foreignKey:AgentID"`

	// Visibility
	Featured      bool  `json:"featured" gorm:"default:false"`
	IsActive      *bool `json:"is_active" gorm:"default:true"`
	AvailableFrom *Date `json:"available_from"`

	Images []PropertyImage `json:"images,omitempty" gorm:"foreignKey:PropertyID"`
}

// IsBookable reports whether the property can appear in public listings and
// accept bookings: it must be active and past its available_from date.
func (p *Property) IsBookable() bool {
	if p.IsActive != nil && !*p.IsActive {
		return false
	}
	if p.AvailableFrom != nil && !p.AvailableFrom.IsZero() && p.AvailableFrom.After(Today().Time) {
		return false
	}
	return true
}

// Slugify derives a URL-safe unique slug from a title. A short random
// suffix keeps repeated titles from colliding.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	slug = strings.Trim(strings.Join(strings.FieldsFunc(slug, func(r rune) bool { return r == '-' }), "-"), "-")
	if slug == "" {
		slug = "property"
	}
	return slug + "-" + uuid.NewString()[:8]
}

// PropertyImage is an ordered image attached to a property. Upload handling
// lives outside this service; only the final URL is stored.
type PropertyImage struct {
	gorm.Model
	PropertyID uint   `json:"property_id" gorm:"not null;index"`
	URL        string `json:"url" gorm:"not null"`
	Category   string `json:"category"` // e.g. Living Room, Kitchen, Bedroom
	Order      int    `json:"order" gorm:"default:0"`
	IsPrimary  bool   `json:"is_primary" gorm:"default:false"`
}
