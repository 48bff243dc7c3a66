package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserType defines the allowed account kinds for end users
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeBusiness UserType = "business"
	UserTypeAdmin    UserType = "admin"
)

// bcryptCost is the work factor for all stored credentials, user and admin
// alike. Above bcrypt.DefaultCost; login latency is acceptable at 12.
const bcryptCost = 12

type Location struct {
	Address     string      `json:"address"`
	City        string      `json:"city"`
	Area        string      `json:"area"`
	Coordinates Coordinates `json:"coordinates" gorm:"embedded;embeddedPrefix:coord_"`
}

// Coordinates of (0,0) mean "not provided". This conflates a legitimate
// null-island coordinate with missing data; kept for compatibility with
// existing records.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

type User struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Username       string     `json:"username" gorm:"uniqueIndex"`
	FirstName      string     `json:"firstName" gorm:"not null"`
	LastName       string     `json:"lastName" gorm:"not null"`
	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash   string     `json:"-" gorm:"not null"`
	UserType       UserType   `json:"userType" gorm:"not null;default:'customer'"`
	Tags           []string   `json:"tags" gorm:"serializer:json"`
	Phone          string     `json:"phone"`
	Location       Location   `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	ProfilePicture string     `json:"profilePicture"`
	IsActive       bool       `json:"isActive" gorm:"default:true"`
	IsVerified     bool       `json:"isVerified" gorm:"default:false"`
	LastLogin      *time.Time `json:"lastLogin"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// BeforeCreate fills in a username when the client did not pick one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Username == "" {
		local := u.Email
		if at := strings.Index(local, "@"); at > 0 {
			local = local[:at]
		}
		u.Username = local + "-" + uuid.NewString()[:8]
	}
	return nil
}

// SetPassword hashes and stores the given plaintext password. It is the only
// path that touches PasswordHash, so unrelated updates never re-hash.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares a candidate password against the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
