package models

import "gorm.io/gorm"

// Agent is the contact person managing one or more properties.
type Agent struct {
	gorm.Model
	Name   string `json:"name" gorm:"not null"`
	Phone  string `json:"phone"`
	Mobile string `json:"mobile"`
	Email  string `json:"email" gorm:"not null"`
	Skype  string `json:"skype"`

	Properties []Property `json:"properties,omitempty" gorm:"foreignKey:AgentID"`
}
