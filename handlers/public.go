package handlers

import (
	"net/http"

	"local-services-api/models"
	"local-services-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetStateMachineInfo documents the listing lifecycle for API consumers
func GetStateMachineInfo(c *gin.Context) {
	owner := map[string][]models.BusinessStatus{}
	admin := map[string][]models.BusinessStatus{}
	for _, s := range []models.BusinessStatus{
		models.StatusPending, models.StatusActive, models.StatusSuspended,
		models.StatusRejected, models.StatusInactive,
	} {
		owner[string(s)] = statemachine.ValidTransitionsFrom(s, statemachine.ActorOwner)
		admin[string(s)] = statemachine.ValidTransitionsFrom(s, statemachine.ActorAdmin)
	}

	c.JSON(http.StatusOK, gin.H{
		"initialStatus":    statemachine.InitialStatus(),
		"ownerTransitions": owner,
		"adminTransitions": admin,
		"description":      "Business Listing Lifecycle State Machine",
		"notes": []string{
			"New listings always start as pending",
			"Only admins can suspend or reject a listing",
			"Owners can only reactivate or deactivate their own listing",
		},
	})
}

// GetBusinessTypes lists the fixed service categories
func GetBusinessTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"businessTypes": models.ValidBusinessTypes,
	})
}
