package handlers

import (
	"net/http"
	"time"

	"local-services-api/config"
	"local-services-api/middleware"
	"local-services-api/models"
	"local-services-api/statemachine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminLogin authenticates a console admin and issues a 24-hour token
func AdminLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		validationFailed(c, "Login failed", "Username and password are required")
		return
	}

	var admin models.Admin
	err := config.DB.Where("username = ?", models.NormalizeUsername(req.Username)).First(&admin).Error
	if err != nil || !admin.IsActive || !admin.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&admin).Update("last_login", now).Error; err != nil {
		config.Logger.Warn("last_login update failed",
			zap.Uint("adminID", admin.ID), zap.Error(err))
	}

	token, err := middleware.GenerateAdminToken(&admin)
	if err != nil {
		serverError(c, "Login failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"admin": gin.H{
			"id":          admin.ID,
			"username":    admin.Username,
			"fullName":    admin.FullName,
			"role":        admin.Role,
			"permissions": admin.Permissions,
		},
	})
}

// DashboardStats returns the aggregate counts for the console landing page
func DashboardStats(c *gin.Context) {
	var totalBusinesses, pendingBusinesses, activeBusinesses int64
	var totalReviews, totalUsers, totalComplaints int64

	config.DB.Model(&models.Business{}).Count(&totalBusinesses)
	config.DB.Model(&models.Business{}).Where("status = ?", models.StatusPending).Count(&pendingBusinesses)
	config.DB.Model(&models.Business{}).Where("status = ?", models.StatusActive).Count(&activeBusinesses)
	config.DB.Model(&models.Review{}).Count(&totalReviews)
	config.DB.Model(&models.User{}).Count(&totalUsers)
	config.DB.Model(&models.Review{}).Where("status = ?", models.ReviewFlagged).Count(&totalComplaints)

	c.JSON(http.StatusOK, gin.H{
		"totalBusinesses":   totalBusinesses,
		"pendingBusinesses": pendingBusinesses,
		"activeBusinesses":  activeBusinesses,
		"totalReviews":      totalReviews,
		"totalUsers":        totalUsers,
		"totalComplaints":   totalComplaints,
	})
}

// ListServiceProviders returns listings for moderation, any status
func ListServiceProviders(c *gin.Context) {
	page, limit, offset := pageParams(c)

	query := config.DB.Model(&models.Business{})
	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"business_name LIKE ? OR contact_email LIKE ? OR location_city LIKE ?",
			like, like, like)
	}

	var total int64
	query.Count(&total)

	var businesses []models.Business
	if err := query.Preload("Owner").
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&businesses).Error; err != nil {
		serverError(c, "Server error while fetching service providers", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses":  businesses,
		"currentPage": page,
		"totalPages":  totalPages(total, limit),
		"total":       total,
	})
}

// UpdateBusinessStatus moves a listing to any of the five states, recording
// the audit trail. First activation also stamps the verification sub-record;
// both land in a single conditional write guarded on the status that was
// read, so a concurrent transition cannot be silently overwritten.
func UpdateBusinessStatus(c *gin.Context) {
	admin := middleware.MustAdmin(c)

	var req struct {
		Status models.BusinessStatus `json:"status"`
		Reason string                `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, "Invalid status", err.Error())
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}

	var business models.Business
	if err := config.DB.First(&business, c.Param("id")).Error; err != nil {
		notFound(c, "Business not found", "The requested business does not exist")
		return
	}

	if err := statemachine.CanTransition(business.Status, req.Status, statemachine.ActorAdmin); err != nil {
		validationFailed(c, "Invalid status change", err.Error())
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":            req.Status,
		"status_reason":     req.Reason,
		"status_updated_at": now,
		"status_updated_by": admin.ID,
	}
	// First activation verifies the listing; already-verified listings keep
	// their original stamp.
	if req.Status == models.StatusActive && !business.Verification.IsVerified {
		updates["verification_is_verified"] = true
		updates["verification_verified_at"] = now
		updates["verification_verified_by"] = admin.ID
	}

	result := config.DB.Model(&models.Business{}).
		Where("id = ? AND status = ?", business.ID, business.Status).
		Updates(updates)
	if result.Error != nil {
		serverError(c, "Server error while updating business status", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{
			"message": "Business status changed concurrently",
			"error":   "The listing was modified by another request. Re-read and retry.",
		})
		return
	}

	config.Logger.Info("business status updated",
		zap.Uint("businessID", business.ID),
		zap.String("from", string(business.Status)),
		zap.String("to", string(req.Status)),
		zap.Uint("adminID", admin.ID),
	)

	config.DB.First(&business, business.ID)
	c.JSON(http.StatusOK, gin.H{
		"message":  "Status updated successfully",
		"business": business,
	})
}

// HardDeleteBusiness removes a listing and cascades its reviews. The listing
// row goes first; a cascade failure is reported as explicit partial success
// rather than swallowed.
func HardDeleteBusiness(c *gin.Context) {
	var business models.Business
	if err := config.DB.First(&business, c.Param("id")).Error; err != nil {
		notFound(c, "Business not found", "The requested business does not exist")
		return
	}

	if err := config.DB.Delete(&business).Error; err != nil {
		serverError(c, "Server error while deleting business", err)
		return
	}

	result := config.DB.Where("business_id = ?", business.ID).Delete(&models.Review{})
	if result.Error != nil {
		config.Logger.Error("review cascade failed after business delete",
			zap.Uint("businessID", business.ID), zap.Error(result.Error))
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Business deleted but review cleanup failed",
			"error":   "Reviews referencing the deleted business could not be removed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Business deleted successfully",
		"reviewsDeleted": result.RowsAffected,
	})
}

// ListReviews returns reviews for moderation, any status
func ListReviews(c *gin.Context) {
	page, limit, offset := pageParams(c)

	query := config.DB.Model(&models.Review{})
	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("comment LIKE ? OR title LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var reviews []models.Review
	if err := query.Preload("Reviewer").Preload("Business").
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&reviews).Error; err != nil {
		serverError(c, "Server error while fetching reviews", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":     reviews,
		"currentPage": page,
		"totalPages":  totalPages(total, limit),
		"total":       total,
	})
}

// UpdateReviewStatus moderates a single review
func UpdateReviewStatus(c *gin.Context) {
	admin := middleware.MustAdmin(c)

	var req struct {
		Status models.ReviewStatus `json:"status"`
		Reason string              `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, "Invalid status", err.Error())
		return
	}
	if !models.ValidReviewStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid status"})
		return
	}

	var review models.Review
	if err := config.DB.First(&review, c.Param("id")).Error; err != nil {
		notFound(c, "Review not found", "The requested review does not exist")
		return
	}

	now := time.Now()
	if err := config.DB.Model(&review).Updates(map[string]interface{}{
		"status":            req.Status,
		"admin_notes":       req.Reason,
		"status_updated_at": now,
		"status_updated_by": admin.ID,
	}).Error; err != nil {
		serverError(c, "Server error while updating review status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review status updated successfully",
		"review":  review,
	})
}

// ListComplaints returns flagged reviews awaiting moderation
func ListComplaints(c *gin.Context) {
	page, limit, offset := pageParams(c)

	query := config.DB.Model(&models.Review{}).Where("status = ?", models.ReviewFlagged)

	var total int64
	query.Count(&total)

	var complaints []models.Review
	if err := query.Preload("Reviewer").Preload("Business").
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&complaints).Error; err != nil {
		serverError(c, "Server error while fetching complaints", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"complaints":  complaints,
		"currentPage": page,
		"totalPages":  totalPages(total, limit),
		"total":       total,
	})
}

// AdminProfile returns the authenticated admin's record
func AdminProfile(c *gin.Context) {
	admin := middleware.MustAdmin(c)
	c.JSON(http.StatusOK, admin)
}

// AdminLogout exists for symmetry; tokens are stateless
func AdminLogout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
