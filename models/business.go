package models

import "time"

// BusinessStatus represents all possible states of a business listing
type BusinessStatus string

const (
	StatusPending   BusinessStatus = "pending"
	StatusActive    BusinessStatus = "active"
	StatusSuspended BusinessStatus = "suspended"
	StatusRejected  BusinessStatus = "rejected"
	StatusInactive  BusinessStatus = "inactive"
)

// ValidStatus reports whether s is one of the five listing states.
func ValidStatus(s BusinessStatus) bool {
	switch s {
	case StatusPending, StatusActive, StatusSuspended, StatusRejected, StatusInactive:
		return true
	}
	return false
}

// BusinessType enumerates the fixed service categories
type BusinessType string

var ValidBusinessTypes = []BusinessType{
	"plumbing", "electrical", "cleaning", "painting", "gardening",
	"repair", "transport", "security", "education", "food",
	"beauty", "health", "construction", "maintenance", "other",
}

func ValidBusinessType(t BusinessType) bool {
	for _, v := range ValidBusinessTypes {
		if t == v {
			return true
		}
	}
	return false
}

type Contact struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

type BusinessLocation struct {
	Address      string      `json:"address"`
	City         string      `json:"city"`
	Area         string      `json:"area"`
	Coordinates  Coordinates `json:"coordinates" gorm:"embedded;embeddedPrefix:coord_"`
	ServiceAreas []string    `json:"serviceAreas" gorm:"serializer:json"`
}

type Images struct {
	Logo    string   `json:"logo"`
	Cover   string   `json:"cover"`
	Gallery []string `json:"gallery" gorm:"serializer:json"`
}

// Verification is stamped by the admin who first activates a listing
type Verification struct {
	IsVerified bool       `json:"isVerified"`
	VerifiedAt *time.Time `json:"verifiedAt"`
	VerifiedBy *uint      `json:"verifiedBy"` // admin id
}

type Rating struct {
	Average      float64 `json:"average"`
	TotalReviews int     `json:"totalReviews"`
}

type Business struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	OwnerID       uint              `json:"ownerId" gorm:"uniqueIndex;not null"` // one listing per owner, immutable
	Owner         User              `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	BusinessName  string            `json:"businessName" gorm:"not null"`
	BusinessType  BusinessType      `json:"businessType" gorm:"not null"`
	Description   string            `json:"description" gorm:"not null"`
	Contact       Contact           `json:"contact" gorm:"embedded;embeddedPrefix:contact_"`
	Location      BusinessLocation  `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	Services      []string          `json:"services" gorm:"serializer:json"`
	Images        Images            `json:"images" gorm:"embedded;embeddedPrefix:image_"`
	BusinessHours map[string]string `json:"businessHours" gorm:"serializer:json"`
	Tags          []string          `json:"tags" gorm:"serializer:json"`
	Rating        Rating            `json:"rating" gorm:"embedded;embeddedPrefix:rating_"`
	Status        BusinessStatus    `json:"status" gorm:"not null;default:'pending'"`
	Verification  Verification      `json:"verification" gorm:"embedded;embeddedPrefix:verification_"`

	// Status audit trail, written on every admin transition
	StatusReason    string     `json:"statusReason"`
	StatusUpdatedAt *time.Time `json:"statusUpdatedAt"`
	StatusUpdatedBy *uint      `json:"statusUpdatedBy"` // admin id

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
