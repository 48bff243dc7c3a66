package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"local-services-api/config"
	"local-services-api/middleware"
	"local-services-api/models"
	"local-services-api/policy"
	"local-services-api/statemachine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CreateBusinessRequest struct {
	BusinessName  string              `json:"businessName"`
	BusinessType  models.BusinessType `json:"businessType"`
	Description   string              `json:"description"`
	Contact       models.Contact      `json:"contact"`
	Location      LocationInput       `json:"location"`
	ServiceAreas  []string            `json:"serviceAreas"`
	Services      []string            `json:"services"`
	BusinessHours map[string]string   `json:"businessHours"`
	Images        models.Images       `json:"images"`
	Tags          []string            `json:"tags"`
}

func (r *CreateBusinessRequest) validate() []string {
	var errs []string
	if len(strings.TrimSpace(r.BusinessName)) < 2 {
		errs = append(errs, "Business name must be at least 2 characters long")
	}
	if r.BusinessType == "" {
		errs = append(errs, "Business type is required")
	}
	if len(strings.TrimSpace(r.Description)) < 20 {
		errs = append(errs, "Description must be at least 20 characters long")
	}
	if r.Contact.Phone == "" || r.Contact.Email == "" {
		errs = append(errs, "Phone and email are required in contact information")
	}
	if r.Location.Address == "" || r.Location.City == "" {
		errs = append(errs, "Address and city are required in location information")
	}
	return errs
}

// CreateBusiness registers a listing for the authenticated user. One listing
// per owner; the unique index on owner_id closes the race the pre-check
// leaves open.
func CreateBusiness(c *gin.Context) {
	user := middleware.MustUser(c)

	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, "Validation failed", err.Error())
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		validationFailed(c, "Validation failed", errs...)
		return
	}
	if !models.ValidBusinessType(req.BusinessType) {
		validationFailed(c, "Invalid business type",
			"Business type must be one of the supported categories")
		return
	}

	var existing models.Business
	if err := config.DB.Where("owner_id = ?", user.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":            "You already have a registered business",
			"error":              "Each user can only register one business. Please update your existing business instead.",
			"existingBusinessId": existing.ID,
		})
		return
	}

	business := models.Business{
		OwnerID:      user.ID,
		BusinessName: strings.TrimSpace(req.BusinessName),
		BusinessType: req.BusinessType,
		Description:  strings.TrimSpace(req.Description),
		Contact: models.Contact{
			Phone:   strings.TrimSpace(req.Contact.Phone),
			Email:   models.NormalizeEmail(req.Contact.Email),
			Website: strings.TrimSpace(req.Contact.Website),
		},
		Location: models.BusinessLocation{
			Address:      strings.TrimSpace(req.Location.Address),
			City:         strings.TrimSpace(req.Location.City),
			Area:         strings.TrimSpace(req.Location.Area),
			ServiceAreas: req.ServiceAreas,
		},
		Services:      req.Services,
		BusinessHours: req.BusinessHours,
		Images:        req.Images,
		Status:        statemachine.InitialStatus(), // never client-supplied
	}
	if req.Location.Coordinates != nil {
		business.Location.Coordinates = *req.Location.Coordinates
	}
	for _, tag := range req.Tags {
		if t := strings.TrimSpace(tag); t != "" {
			business.Tags = append(business.Tags, t)
		}
	}

	if err := config.DB.Create(&business).Error; err != nil {
		// Concurrent create by the same owner trips the unique index; surface
		// the winner's id like the pre-check would have.
		if err2 := config.DB.Where("owner_id = ?", user.ID).First(&existing).Error; err2 == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"message":            "You already have a registered business",
				"error":              "Each user can only register one business. Please update your existing business instead.",
				"existingBusinessId": existing.ID,
			})
			return
		}
		serverError(c, "Server error during business registration", err)
		return
	}

	// Listing exists, so the owner is a business account now
	if err := config.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{"user_type": models.UserTypeBusiness, "phone": business.Contact.Phone}).Error; err != nil {
		config.Logger.Error("owner account type update failed after business create",
			zap.Uint("userID", user.ID), zap.Uint("businessID", business.ID), zap.Error(err))
	}

	config.DB.Preload("Owner").First(&business, business.ID)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Thank you for registering your business with us! Your business will be activated soon when we verify it. You may receive a call or email for more verification if we require.",
		"business": business,
		"nextSteps": []string{
			"Complete your business profile with detailed information",
			"Upload business images and documents",
			"Set your business hours and service areas",
			"Wait for admin verification (usually within 24-48 hours)",
		},
	})
}

var businessSortColumns = map[string]string{
	"createdAt":    "created_at",
	"businessName": "business_name",
	"rating":       "rating_average",
}

// ListBusinesses returns active listings with filters and pagination (public)
func ListBusinesses(c *gin.Context) {
	page, limit, offset := pageParams(c)

	status := models.BusinessStatus(c.DefaultQuery("status", string(models.StatusActive)))
	query := config.DB.Model(&models.Business{}).Where("status = ?", status)

	if businessType := c.Query("businessType"); businessType != "" {
		query = query.Where("business_type = ?", businessType)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("location_city LIKE ?", "%"+city+"%")
	}
	if isVerified := c.Query("isVerified"); isVerified != "" {
		query = query.Where("verification_is_verified = ?", isVerified == "true")
	}
	if minRating := c.Query("minRating"); minRating != "" {
		if rating, err := strconv.ParseFloat(minRating, 64); err == nil {
			query = query.Where("rating_average >= ?", rating)
		}
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"business_name LIKE ? OR description LIKE ? OR location_city LIKE ? OR tags LIKE ?",
			like, like, like, like)
	}

	sortCol, ok := businessSortColumns[c.DefaultQuery("sortBy", "createdAt")]
	if !ok {
		sortCol = "created_at"
	}
	order := "desc"
	if c.DefaultQuery("sortOrder", "desc") == "asc" {
		order = "asc"
	}

	var total int64
	query.Count(&total)

	var businesses []models.Business
	if err := query.Preload("Owner").
		Order(sortCol + " " + order).
		Offset(offset).Limit(limit).
		Find(&businesses).Error; err != nil {
		serverError(c, "Server error while fetching businesses", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": businesses,
		"pagination": gin.H{
			"currentPage": page,
			"totalPages":  totalPages(total, limit),
			"total":       total,
			"limit":       limit,
		},
	})
}

// GetBusiness returns a single listing. Non-active listings are masked with
// a 404 for everyone except the owner and admins, so their existence is not
// leaked.
func GetBusiness(c *gin.Context) {
	var business models.Business
	if err := config.DB.Preload("Owner").First(&business, c.Param("id")).Error; err != nil {
		notFound(c, "Business not found", "The requested business does not exist")
		return
	}

	if business.Status != models.StatusActive {
		principal, hasPrincipal := middleware.GetPrincipal(c)
		p := &principal
		if !hasPrincipal {
			p = nil
		}
		if !policy.CanBusiness(p, &business, policy.ActionRead) {
			notFound(c, "Business not available", "This business is currently "+string(business.Status))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"business": business,
			"note":     "Owner view: business is " + string(business.Status),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// BusinessUpdateRequest is the explicit owner allow-list: fields absent here
// (owner, verification, rating, status audit) cannot be touched through the
// public API no matter what the request body carries.
type BusinessUpdateRequest struct {
	BusinessName  *string                `json:"businessName"`
	BusinessType  *models.BusinessType   `json:"businessType"`
	Description   *string                `json:"description"`
	Contact       *models.Contact        `json:"contact"`
	Location      *LocationInput         `json:"location"`
	ServiceAreas  *[]string              `json:"serviceAreas"`
	Services      *[]string              `json:"services"`
	BusinessHours *map[string]string     `json:"businessHours"`
	Images        *models.Images         `json:"images"`
	Tags          *[]string              `json:"tags"`
	Status        *models.BusinessStatus `json:"status"`
}

// UpdateBusiness lets the owner edit their listing. An owner-supplied status
// is honored only when it is "active" (reactivation); any other value is
// silently dropped and the stored status survives untouched.
func UpdateBusiness(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var business models.Business
	if err := config.DB.First(&business, c.Param("id")).Error; err != nil {
		notFound(c, "Business not found", "The requested business does not exist")
		return
	}

	if !policy.CanBusiness(&principal, &business, policy.ActionUpdate) {
		forbidden(c, "Access denied", "You can only update your own business")
		return
	}

	var req BusinessUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, "Validation failed", err.Error())
		return
	}

	priorStatus := business.Status

	var errs []string
	if req.BusinessName != nil {
		*req.BusinessName = strings.TrimSpace(*req.BusinessName)
		if len(*req.BusinessName) < 2 {
			errs = append(errs, "Business name must be at least 2 characters long")
		}
	}
	if req.BusinessType != nil && !models.ValidBusinessType(*req.BusinessType) {
		errs = append(errs, "Business type must be one of the supported categories")
	}
	if req.Description != nil {
		*req.Description = strings.TrimSpace(*req.Description)
		if len(*req.Description) < 20 {
			errs = append(errs, "Description must be at least 20 characters long")
		}
	}
	if len(errs) > 0 {
		validationFailed(c, "Validation failed", errs...)
		return
	}

	if req.BusinessName != nil {
		business.BusinessName = *req.BusinessName
	}
	if req.BusinessType != nil {
		business.BusinessType = *req.BusinessType
	}
	if req.Description != nil {
		business.Description = *req.Description
	}
	if req.Contact != nil {
		business.Contact = models.Contact{
			Phone:   strings.TrimSpace(req.Contact.Phone),
			Email:   models.NormalizeEmail(req.Contact.Email),
			Website: strings.TrimSpace(req.Contact.Website),
		}
	}
	if req.Location != nil {
		business.Location.Address = strings.TrimSpace(req.Location.Address)
		business.Location.City = strings.TrimSpace(req.Location.City)
		business.Location.Area = strings.TrimSpace(req.Location.Area)
		if req.Location.Coordinates != nil {
			business.Location.Coordinates = *req.Location.Coordinates
		}
	}
	if req.ServiceAreas != nil {
		business.Location.ServiceAreas = *req.ServiceAreas
	}
	if req.Services != nil {
		business.Services = *req.Services
	}
	if req.BusinessHours != nil {
		business.BusinessHours = *req.BusinessHours
	}
	if req.Images != nil {
		business.Images = *req.Images
	}
	if req.Tags != nil {
		var tags []string
		for _, tag := range *req.Tags {
			if t := strings.TrimSpace(tag); t != "" {
				tags = append(tags, t)
			}
		}
		business.Tags = tags
	}
	if req.Status != nil {
		if err := statemachine.CanTransition(priorStatus, *req.Status, statemachine.ActorOwner); err == nil &&
			*req.Status == models.StatusActive {
			business.Status = models.StatusActive
		}
		// anything else: dropped, prior status preserved
	}

	// Guarded on the status that was read, so a transition made by another
	// request (an admin suspension, say) is never written over.
	result := config.DB.Model(&models.Business{}).
		Where("id = ? AND status = ?", business.ID, priorStatus).
		Select("*").Omit("id", "created_at", "owner_id", "Owner").
		Updates(&business)
	if result.Error != nil {
		serverError(c, "Server error while updating business", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Business was modified concurrently",
			"error":   "The listing changed while this update was being processed. Please re-read and retry.",
		})
		return
	}

	config.DB.Preload("Owner").First(&business, business.ID)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Business updated successfully",
		"business": business,
	})
}

// DeleteBusiness is the owner's soft delete: the listing flips to inactive
// and the owner becomes a customer again. The record survives so the owner
// can reactivate later.
func DeleteBusiness(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	var business models.Business
	if err := config.DB.First(&business, c.Param("id")).Error; err != nil {
		notFound(c, "Business not found", "The requested business does not exist")
		return
	}

	if !policy.CanBusiness(&principal, &business, policy.ActionSoftDelete) {
		forbidden(c, "Access denied", "You can only delete your own business")
		return
	}

	if err := statemachine.CanTransition(business.Status, models.StatusInactive, statemachine.ActorOwner); err != nil {
		validationFailed(c, "Invalid status change", err.Error())
		return
	}

	if err := config.DB.Model(&business).Update("status", models.StatusInactive).Error; err != nil {
		serverError(c, "Server error while deleting business", err)
		return
	}
	if err := config.DB.Model(&models.User{}).Where("id = ?", business.OwnerID).
		Update("user_type", models.UserTypeCustomer).Error; err != nil {
		config.Logger.Error("owner account type update failed after business deactivation",
			zap.Uint("userID", business.OwnerID), zap.Uint("businessID", business.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Business deleted successfully",
		"note":    "Your business has been deactivated. You can reactivate it anytime by updating the status.",
	})
}

// GetMyBusiness fetches the authenticated user's own listing
func GetMyBusiness(c *gin.Context) {
	user := middleware.MustUser(c)

	var business models.Business
	if err := config.DB.Preload("Owner").Where("owner_id = ?", user.ID).First(&business).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "No business found for this user",
			"error":   "You have not registered a business yet",
			"nextSteps": []string{
				"Register your business using POST /api/business",
				"Provide business details, contact information, and location",
				"Upload business images and set service areas",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// ListBusinessesByType returns active listings of one category (public)
func ListBusinessesByType(c *gin.Context) {
	businessType := c.Param("businessType")
	page, limit, offset := pageParams(c)

	query := config.DB.Model(&models.Business{}).
		Where("business_type = ? AND status = ?", businessType, models.StatusActive)
	if city := c.Query("city"); city != "" {
		query = query.Where("location_city LIKE ?", "%"+city+"%")
	}

	var total int64
	query.Count(&total)

	var businesses []models.Business
	if err := query.Preload("Owner").
		Order("rating_average desc, created_at desc").
		Offset(offset).Limit(limit).
		Find(&businesses).Error; err != nil {
		serverError(c, "Server error while fetching businesses by type", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses":   businesses,
		"businessType": businessType,
		"pagination": gin.H{
			"currentPage": page,
			"totalPages":  totalPages(total, limit),
			"total":       total,
		},
	})
}

// ListBusinessesByCity returns active listings in one city (public)
func ListBusinessesByCity(c *gin.Context) {
	city := c.Param("city")
	page, limit, offset := pageParams(c)

	query := config.DB.Model(&models.Business{}).
		Where("location_city LIKE ? AND status = ?", "%"+city+"%", models.StatusActive)
	if businessType := c.Query("businessType"); businessType != "" {
		query = query.Where("business_type = ?", businessType)
	}

	var total int64
	query.Count(&total)

	var businesses []models.Business
	if err := query.Preload("Owner").
		Order("rating_average desc, created_at desc").
		Offset(offset).Limit(limit).
		Find(&businesses).Error; err != nil {
		serverError(c, "Server error while fetching businesses by location", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": businesses,
		"city":       city,
		"pagination": gin.H{
			"currentPage": page,
			"totalPages":  totalPages(total, limit),
			"total":       total,
		},
	})
}

// ListVerifiedBusinesses returns top-rated verified listings (public)
func ListVerifiedBusinesses(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}

	query := config.DB.Model(&models.Business{}).
		Where("verification_is_verified = ? AND status = ?", true, models.StatusActive)
	if city := c.Query("city"); city != "" {
		query = query.Where("location_city LIKE ?", "%"+city+"%")
	}

	var businesses []models.Business
	if err := query.Preload("Owner").
		Order("rating_average desc, rating_total_reviews desc").
		Limit(limit).
		Find(&businesses).Error; err != nil {
		serverError(c, "Server error while fetching verified businesses", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": businesses,
		"total":      len(businesses),
		"note":       "These are verified businesses with high ratings",
	})
}
