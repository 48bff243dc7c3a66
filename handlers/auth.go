package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"local-services-api/config"
	"local-services-api/middleware"
	"local-services-api/models"
	"local-services-api/policy"
	"local-services-api/statemachine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

type LocationInput struct {
	Address     string              `json:"address"`
	City        string              `json:"city"`
	Area        string              `json:"area"`
	Coordinates *models.Coordinates `json:"coordinates"`
}

type RegisterRequest struct {
	Username        string          `json:"username"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Email           string          `json:"email"`
	Password        string          `json:"password"`
	ConfirmPassword string          `json:"confirmPassword"`
	Phone           string          `json:"phone"`
	UserType        models.UserType `json:"userType"`
	Location        LocationInput   `json:"location"`
}

type BusinessRegisterRequest struct {
	RegisterRequest
	BusinessName     string              `json:"businessName"`
	BusinessType     models.BusinessType `json:"businessType"`
	Description      string              `json:"description"`
	BusinessContact  *models.Contact     `json:"businessContact"`
	BusinessLocation *LocationInput      `json:"businessLocation"`
	ServiceAreas     []string            `json:"serviceAreas"`
	Services         []string            `json:"services"`
	Images           models.Images       `json:"images"`
	BusinessHours    map[string]string   `json:"businessHours"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) validate() []string {
	var errs []string
	if len(strings.TrimSpace(r.FirstName)) < 2 {
		errs = append(errs, "First name must be at least 2 characters long")
	}
	if len(strings.TrimSpace(r.LastName)) < 2 {
		errs = append(errs, "Last name must be at least 2 characters long")
	}
	if !emailPattern.MatchString(r.Email) {
		errs = append(errs, "Please provide a valid email address")
	}
	if len(r.Password) < 6 {
		errs = append(errs, "Password must be at least 6 characters long")
	}
	if r.Password != r.ConfirmPassword {
		errs = append(errs, "Passwords do not match")
	}
	if strings.TrimSpace(r.Location.City) == "" {
		errs = append(errs, "City is required in location information")
	}
	return errs
}

func (r *RegisterRequest) toUser() models.User {
	user := models.User{
		Username:  r.Username,
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Email:     models.NormalizeEmail(r.Email),
		Phone:     strings.TrimSpace(r.Phone),
		IsActive:  true,
		Location: models.Location{
			Address: strings.TrimSpace(r.Location.Address),
			City:    strings.TrimSpace(r.Location.City),
			Area:    strings.TrimSpace(r.Location.Area),
		},
	}
	if r.Location.Coordinates != nil {
		user.Location.Coordinates = *r.Location.Coordinates
	}
	return user
}

// Register creates a customer account (public registration path)
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, "Validation failed", err.Error())
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		validationFailed(c, "Validation failed", errs...)
		return
	}

	userType := req.UserType
	if userType == "" {
		userType = models.UserTypeCustomer
	}
	switch userType {
	case models.UserTypeCustomer, models.UserTypeBusiness, models.UserTypeAdmin:
	default:
		validationFailed(c, "Registration failed",
			"Invalid user type. Must be one of: customer, business, admin")
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ?", models.NormalizeEmail(req.Email)).First(&existing).Error; err == nil {
		validationFailed(c, "Registration failed",
			"Email already registered. Please use a different email or try logging in.")
		return
	}
	if req.Username != "" {
		if err := config.DB.Where("username = ?", req.Username).First(&existing).Error; err == nil {
			validationFailed(c, "Registration failed",
				"Username already taken. Please choose a different username.")
			return
		}
	}

	user := req.toUser()
	user.UserType = userType
	user.Tags = []string{"Customer"}
	if err := user.SetPassword(req.Password); err != nil {
		serverError(c, "Registration failed", err)
		return
	}

	if err := config.DB.Create(&user).Error; err != nil {
		// Concurrent registration with the same email trips the unique index;
		// report it like the pre-check would have.
		if err2 := config.DB.Where("email = ?", user.Email).First(&existing).Error; err2 == nil {
			validationFailed(c, "Registration failed",
				"Email already registered. Please use a different email or try logging in.")
			return
		}
		serverError(c, "Registration failed", err)
		return
	}

	token, err := middleware.GenerateUserToken(&user)
	if err != nil {
		serverError(c, "Registration failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful! Welcome to Local Services.",
		"user":    user,
		"token":   token,
		"nextSteps": []string{
			"Complete your profile",
			"Browse available services",
			"Book appointments with verified businesses",
		},
	})
}

// BusinessRegister creates a business account and its listing in one flow.
// Both records land in a single transaction so a failure cannot leave a
// business-typed user without a listing.
func BusinessRegister(c *gin.Context) {
	var req BusinessRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, "Validation failed", err.Error())
		return
	}
	if errs := req.RegisterRequest.validate(); len(errs) > 0 {
		validationFailed(c, "Validation failed", errs...)
		return
	}
	if len(strings.TrimSpace(req.BusinessName)) < 2 {
		validationFailed(c, "Business registration failed",
			"Business name must be at least 2 characters long")
		return
	}
	if req.BusinessType == "" {
		validationFailed(c, "Business registration failed", "Business type is required")
		return
	}
	if !models.ValidBusinessType(req.BusinessType) {
		validationFailed(c, "Business registration failed",
			"Business type must be one of the supported categories")
		return
	}
	if len(strings.TrimSpace(req.Description)) < 20 {
		validationFailed(c, "Business registration failed",
			"Business description must be at least 20 characters long")
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ?", models.NormalizeEmail(req.Email)).First(&existing).Error; err == nil {
		validationFailed(c, "Registration failed",
			"Email already registered. Please use a different email or try logging in.")
		return
	}

	user := req.toUser()
	user.UserType = models.UserTypeBusiness
	user.Tags = []string{"Service Provider"}
	user.ProfilePicture = req.Images.Logo
	if err := user.SetPassword(req.Password); err != nil {
		serverError(c, "Business registration failed", err)
		return
	}

	business := models.Business{
		BusinessName:  strings.TrimSpace(req.BusinessName),
		BusinessType:  req.BusinessType,
		Description:   strings.TrimSpace(req.Description),
		Services:      req.Services,
		Images:        req.Images,
		BusinessHours: req.BusinessHours,
		Tags:          []string{"Service Provider"},
		Status:        statemachine.InitialStatus(), // never client-supplied
	}

	// Business contact and location fall back to the owner's details
	business.Contact = models.Contact{Phone: user.Phone, Email: user.Email}
	if req.BusinessContact != nil {
		if req.BusinessContact.Phone != "" {
			business.Contact.Phone = strings.TrimSpace(req.BusinessContact.Phone)
		}
		if req.BusinessContact.Email != "" {
			business.Contact.Email = models.NormalizeEmail(req.BusinessContact.Email)
		}
		business.Contact.Website = strings.TrimSpace(req.BusinessContact.Website)
	}
	business.Location = models.BusinessLocation{
		Address:      user.Location.Address,
		City:         user.Location.City,
		Area:         user.Location.Area,
		Coordinates:  user.Location.Coordinates,
		ServiceAreas: []string{user.Location.City},
	}
	if loc := req.BusinessLocation; loc != nil {
		if loc.Address != "" {
			business.Location.Address = strings.TrimSpace(loc.Address)
		}
		if loc.City != "" {
			business.Location.City = strings.TrimSpace(loc.City)
		}
		if loc.Area != "" {
			business.Location.Area = strings.TrimSpace(loc.Area)
		}
		if loc.Coordinates != nil {
			business.Location.Coordinates = *loc.Coordinates
		}
	}
	if len(req.ServiceAreas) > 0 {
		business.Location.ServiceAreas = req.ServiceAreas
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		business.OwnerID = user.ID
		return tx.Create(&business).Error
	})
	if err != nil {
		serverError(c, "Business registration failed", err)
		return
	}

	token, err := middleware.GenerateUserToken(&user)
	if err != nil {
		serverError(c, "Business registration failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thank you for registering your business with us! Your application is in process of verification. We will email you once it's active or if we need any further verification.",
		"user":    user,
		"business": gin.H{
			"id":           business.ID,
			"businessName": business.BusinessName,
			"status":       business.Status,
		},
		"token": token,
		"nextSteps": []string{
			"Complete your business profile with detailed information",
			"Upload business images and verification documents",
			"Set your business hours and service areas",
			"Wait for admin verification (usually within 24-48 hours)",
		},
	})
}

// Login handles the customer portal
func Login(c *gin.Context) {
	loginPortal(c, models.UserTypeCustomer)
}

// BusinessLogin handles the business portal
func BusinessLogin(c *gin.Context) {
	loginPortal(c, models.UserTypeBusiness)
}

func loginPortal(c *gin.Context, portal models.UserType) {
	label := "Login failed"
	if portal == models.UserTypeBusiness {
		label = "Business login failed"
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, "Validation failed", err.Error())
		return
	}
	var errs []string
	if req.Email == "" {
		errs = append(errs, "Email is required")
	}
	if req.Password == "" {
		errs = append(errs, "Password is required")
	}
	if len(errs) > 0 {
		validationFailed(c, "Validation failed", errs...)
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", models.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": label,
			"error":   "Invalid email or password. Please check your credentials and try again.",
		})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": label,
			"error":   "Account is deactivated. Please contact support for assistance.",
		})
		return
	}

	// Wrong-portal accounts get a redirect hint, not a token. Checked before
	// the password so the hint is consistent on both portals.
	if redirect := policy.PortalRedirect(portal, user.UserType); redirect != "" {
		other := "business"
		hint := "You have a business account. Please login through the business login portal."
		if user.UserType == models.UserTypeCustomer {
			other = "customer"
			hint = "You have a customer account. Please login through the customer login portal."
		}
		c.JSON(http.StatusForbidden, gin.H{
			"message":    "Access Denied",
			"error":      hint,
			"redirectTo": redirect,
			"userType":   other,
		})
		return
	}

	if !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": label,
			"error":   "Invalid email or password. Please check your credentials and try again.",
		})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&user).Update("last_login", now).Error; err != nil {
		config.Logger.Warn("last_login update failed",
			zap.Uint("userID", user.ID), zap.Error(err))
	}
	user.LastLogin = &now

	token, err := middleware.GenerateUserToken(&user)
	if err != nil {
		serverError(c, label, err)
		return
	}

	resp := gin.H{
		"message": "Login successful! Welcome back.",
		"user":    user,
		"token":   token,
	}
	if portal == models.UserTypeBusiness {
		resp["message"] = "Business login successful! Welcome back."
		var business models.Business
		if err := config.DB.Where("owner_id = ?", user.ID).First(&business).Error; err == nil {
			resp["business"] = gin.H{
				"id":           business.ID,
				"businessName": business.BusinessName,
				"status":       business.Status,
				"isVerified":   business.Verification.IsVerified,
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a still-valid (or just-expired-side-of-valid) token for
// a fresh 7-day one, re-checking that the account still exists and is active
func Refresh(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		validationFailed(c, "Token refresh failed", "Refresh token is required")
		return
	}

	claims, err := middleware.ParseToken(req.Token)
	if err != nil {
		detail := "Invalid refresh token"
		if errors.Is(err, middleware.ErrTokenExpired) {
			detail = "Refresh token has expired. Please login again."
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token refresh failed", "error": detail})
		return
	}
	if claims.Kind != policy.KindUser {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token refresh failed", "error": "Invalid refresh token"})
		return
	}

	principal, err := middleware.ResolvePrincipal(claims)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "Token refresh failed",
			"error":   "User not found or account inactive",
		})
		return
	}

	token, err := middleware.GenerateUserToken(principal.User)
	if err != nil {
		serverError(c, "Token refresh failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"user":    principal.User,
		"token":   token,
	})
}

// Me returns the authenticated user's profile
func Me(c *gin.Context) {
	user := middleware.MustUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"message": "User profile retrieved successfully",
	})
}

// Logout exists for symmetry; tokens are stateless so the client just
// discards its copy
func Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
		"note":    "Your session has been terminated. Please login again to continue.",
	})
}
