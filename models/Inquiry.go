package models

import "gorm.io/gorm"

// Contact inquiry subjects.
const (
	SubjectPropertyInquiry    = "property"
	SubjectPropertyManagement = "management"
	SubjectConstruction       = "construction"
	SubjectConsultancy        = "consultancy"
	SubjectAirbnbServices     = "airbnb"
	SubjectOther              = "other"
)

// ContactInquiry is a general contact-form submission. Records are immutable
// once created; admins only toggle the read/responded flags.
type ContactInquiry struct {
	gorm.Model
	Name    string `json:"name" gorm:"not null"`
	Email   string `json:"email" gorm:"not null"`
	Phone   string `json:"phone"`
	Subject string `json:"subject" gorm:"type:varchar(50);default:'other'"`
	Message string `json:"message" gorm:"not null"`

	IsRead    bool `json:"is_read" gorm:"default:false"`
	Responded bool `json:"responded" gorm:"default:false"`
}

// PropertyInquiry is an inquiry about a specific property.
type PropertyInquiry struct {
	gorm.Model
	PropertyID uint      `json:"-" gorm:"not null;index"`
	Property   *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`

	Name    string `json:"name" gorm:"not null"`
	Email   string `json:"email" gorm:"not null"`
	Phone   string `json:"phone"`
	Message string `json:"message" gorm:"not null"`

	IsRead    bool `json:"is_read" gorm:"default:false"`
	Responded bool `json:"responded" gorm:"default:false"`
}
