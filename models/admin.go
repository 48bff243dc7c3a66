package models

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminRole defines the console role hierarchy
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "super_admin"
	RoleAdmin      AdminRole = "admin"
	RoleModerator  AdminRole = "moderator"
)

// AdminPermissions is the fixed console permission set
type AdminPermissions struct {
	ManageServiceProviders bool `json:"manageServiceProviders"`
	ManageListings         bool `json:"manageListings"`
	ManageComplaints       bool `json:"manageComplaints"`
	ManageReviews          bool `json:"manageReviews"`
	ViewAnalytics          bool `json:"viewAnalytics"`
}

func DefaultAdminPermissions() AdminPermissions {
	return AdminPermissions{
		ManageServiceProviders: true,
		ManageListings:         true,
		ManageComplaints:       true,
		ManageReviews:          true,
		ViewAnalytics:          true,
	}
}

type Admin struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	Username     string           `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string           `json:"-" gorm:"not null"`
	Email        string           `json:"email"`
	FullName     string           `json:"fullName" gorm:"not null"`
	Role         AdminRole        `json:"role" gorm:"not null;default:'admin'"`
	Permissions  AdminPermissions `json:"permissions" gorm:"serializer:json"`
	LastLogin    *time.Time       `json:"lastLogin"`
	IsActive     bool             `json:"isActive" gorm:"default:true"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// SetPassword hashes and stores the given plaintext password.
func (a *Admin) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares a candidate password against the stored hash.
func (a *Admin) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plain)) == nil
}

// NormalizeUsername lowercases and trims a username for storage and lookup.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

type seedAdmin struct {
	Username string
	Password string
	Email    string
	FullName string
	Role     AdminRole
}

var defaultAdmins = []seedAdmin{
	{Username: "superadmin", Password: "ChangeMe@123", Email: "superadmin@admin.local", FullName: "Super Admin", Role: RoleSuperAdmin},
	{Username: "admin", Password: "ChangeMe@123", Email: "admin@admin.local", FullName: "Console Admin", Role: RoleAdmin},
	{Username: "moderator", Password: "ChangeMe@123", Email: "moderator@admin.local", FullName: "Content Moderator", Role: RoleModerator},
}

// SeedDefaultAdmins creates the default console accounts if they are missing.
// Idempotent: accounts are matched by username and never recreated or
// modified once they exist. Call once at process start, after migration.
func SeedDefaultAdmins(db *gorm.DB) ([]string, error) {
	var created []string
	for _, seed := range defaultAdmins {
		var existing Admin
		err := db.Where("username = ?", seed.Username).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}
		admin := Admin{
			Username:    NormalizeUsername(seed.Username),
			Email:       seed.Email,
			FullName:    seed.FullName,
			Role:        seed.Role,
			Permissions: DefaultAdminPermissions(),
			IsActive:    true,
		}
		if err := admin.SetPassword(seed.Password); err != nil {
			return created, err
		}
		if err := db.Create(&admin).Error; err != nil {
			return created, err
		}
		created = append(created, admin.Username)
	}
	return created, nil
}
