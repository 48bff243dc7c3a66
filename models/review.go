package models

import "time"

// ReviewStatus is the moderation state of a review
type ReviewStatus string

const (
	ReviewActive  ReviewStatus = "active"
	ReviewHidden  ReviewStatus = "hidden"
	ReviewFlagged ReviewStatus = "flagged"
	ReviewDeleted ReviewStatus = "deleted"
)

func ValidReviewStatus(s ReviewStatus) bool {
	switch s {
	case ReviewActive, ReviewHidden, ReviewFlagged, ReviewDeleted:
		return true
	}
	return false
}

// Review is owned by the review subsystem; this service only moderates it,
// counts it for the dashboard, and cascade-deletes it with its listing.
type Review struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	ReviewerID uint         `json:"reviewerId" gorm:"not null"`
	Reviewer   User         `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	BusinessID uint         `json:"businessId" gorm:"index;not null"`
	Business   Business     `json:"business,omitempty" gorm:"foreignKey:BusinessID"`
	Rating     int          `json:"rating" gorm:"not null"`
	Title      string       `json:"title"`
	Comment    string       `json:"comment"`
	Status     ReviewStatus `json:"status" gorm:"not null;default:'active'"`

	AdminNotes      string     `json:"adminNotes"`
	StatusUpdatedAt *time.Time `json:"statusUpdatedAt"`
	StatusUpdatedBy *uint      `json:"statusUpdatedBy"` // admin id

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
