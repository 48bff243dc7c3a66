package handlers_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"local-services-api/config"
	"local-services-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func createBusinessPayload() map[string]any {
	return map[string]any{
		"businessName": "Malik Electric Works",
		"businessType": "electrical",
		"description":  "Residential and commercial wiring, done right the first time.",
		"contact":      map[string]any{"phone": "0300-1234567", "email": "shop@example.com"},
		"location":     map[string]any{"address": "1 Canal Road", "city": "Lahore"},
	}
}

func TestCreateBusinessStartsPending(t *testing.T) {
	r := setupTest(t)
	user, token := createUser(t, "owner@example.com", models.UserTypeCustomer)

	payload := createBusinessPayload()
	payload["status"] = "active" // must be ignored

	w := doJSON(r, http.MethodPost, "/api/business", payload, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var listing models.Business
	require.NoError(t, config.DB.Where("owner_id = ?", user.ID).First(&listing).Error)
	assert.Equal(t, models.StatusPending, listing.Status)

	// Owning a listing makes the account a business account
	var owner models.User
	require.NoError(t, config.DB.First(&owner, user.ID).Error)
	assert.Equal(t, models.UserTypeBusiness, owner.UserType)
}

func TestCreateSecondBusinessConflicts(t *testing.T) {
	r := setupTest(t)
	user, token := createUser(t, "owner@example.com", models.UserTypeCustomer)
	existing := createBusiness(t, user, models.StatusActive)

	w := doJSON(r, http.MethodPost, "/api/business", createBusinessPayload(), token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, existing.ID, body["existingBusinessId"])

	var count int64
	config.DB.Model(&models.Business{}).Count(&count)
	assert.EqualValues(t, 1, count, "no second listing is created")
}

func TestCreateBusinessRejectsUnknownType(t *testing.T) {
	r := setupTest(t)
	_, token := createUser(t, "owner@example.com", models.UserTypeCustomer)

	payload := createBusinessPayload()
	payload["businessType"] = "timetravel"
	w := doJSON(r, http.MethodPost, "/api/business", payload, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOwnerUpdateCannotSuspend(t *testing.T) {
	r := setupTest(t)
	user, token := createUser(t, "owner@example.com", models.UserTypeBusiness)
	listing := createBusiness(t, user, models.StatusPending)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/business/%d", listing.ID), map[string]any{
		"status": "suspended",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, models.StatusPending, businessStatus(t, listing.ID),
		"owner-supplied suspended is silently dropped")
}

func TestOwnerUpdateCanReactivate(t *testing.T) {
	r := setupTest(t)
	user, token := createUser(t, "owner@example.com", models.UserTypeBusiness)
	listing := createBusiness(t, user, models.StatusInactive)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/business/%d", listing.ID), map[string]any{
		"status": "active",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusActive, businessStatus(t, listing.ID))
}

func TestOwnerUpdateAllowListedFields(t *testing.T) {
	r := setupTest(t)
	user, token := createUser(t, "owner@example.com", models.UserTypeBusiness)
	listing := createBusiness(t, user, models.StatusActive)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/business/%d", listing.ID), map[string]any{
		"description": "A longer description of the services we offer in town.",
		// not on the allow-list, must be ignored:
		"verification": map[string]any{"isVerified": true},
		"rating":       map[string]any{"average": 5},
		"ownerId":      999,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Business
	require.NoError(t, config.DB.First(&updated, listing.ID).Error)
	assert.Equal(t, "A longer description of the services we offer in town.", updated.Description)
	assert.False(t, updated.Verification.IsVerified)
	assert.Zero(t, updated.Rating.Average)
	assert.Equal(t, user.ID, updated.OwnerID)
}

func TestOwnerUpdateLosesRaceToAdminTransition(t *testing.T) {
	r := setupTest(t)
	user, token := createUser(t, "owner@example.com", models.UserTypeBusiness)
	listing := createBusiness(t, user, models.StatusPending)

	// An admin suspension lands between the handler's read and its write
	fired := false
	require.NoError(t, config.DB.Callback().Update().Before("gorm:update").
		Register("race_suspend", func(tx *gorm.DB) {
			if fired || tx.Statement.Table != "businesses" {
				return
			}
			fired = true
			tx.Session(&gorm.Session{NewDB: true}).Exec(
				"UPDATE businesses SET status = ? WHERE id = ?",
				models.StatusSuspended, listing.ID)
		}))

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/business/%d", listing.ID), map[string]any{
		"description": "A perfectly ordinary description of more than twenty characters.",
	}, token)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, models.StatusSuspended, businessStatus(t, listing.ID),
		"the interleaved transition survives the owner's write")
}

func TestSoftDeleteReportsOwnerFlipFailure(t *testing.T) {
	r := setupTest(t)
	core, logs := observer.New(zap.ErrorLevel)
	prevLogger := config.Logger
	config.Logger = zap.New(core)
	t.Cleanup(func() { config.Logger = prevLogger })

	user, token := createUser(t, "owner@example.com", models.UserTypeBusiness)
	listing := createBusiness(t, user, models.StatusActive)

	require.NoError(t, config.DB.Callback().Update().Before("gorm:update").
		Register("users_unavailable", func(tx *gorm.DB) {
			if tx.Statement.Table == "users" {
				tx.AddError(errors.New("users table unavailable"))
			}
		}))

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/business/%d", listing.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusInactive, businessStatus(t, listing.ID))

	entries := logs.FilterMessageSnippet("account type update failed").All()
	require.Len(t, entries, 1, "the failed side effect is logged, not swallowed")

	var owner models.User
	require.NoError(t, config.DB.First(&owner, user.ID).Error)
	assert.Equal(t, models.UserTypeBusiness, owner.UserType)
}

func TestUpdateBusinessRequiresOwner(t *testing.T) {
	r := setupTest(t)
	owner, _ := createUser(t, "owner@example.com", models.UserTypeBusiness)
	listing := createBusiness(t, owner, models.StatusActive)
	_, strangerToken := createUser(t, "stranger@example.com", models.UserTypeCustomer)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/business/%d", listing.ID), map[string]any{
		"description": "Trying to vandalize someone else's listing, twenty chars.",
	}, strangerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetBusinessMasksNonActive(t *testing.T) {
	r := setupTest(t)
	owner, ownerToken := createUser(t, "owner@example.com", models.UserTypeBusiness)
	listing := createBusiness(t, owner, models.StatusPending)
	_, strangerToken := createUser(t, "stranger@example.com", models.UserTypeCustomer)
	_, adminToken := createAdmin(t, "mod")

	path := fmt.Sprintf("/api/business/%d", listing.ID)

	w := doJSON(r, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code, "anonymous caller gets a 404, not a 403")

	w = doJSON(r, http.MethodGet, path, nil, strangerToken)
	assert.Equal(t, http.StatusNotFound, w.Code, "non-owner gets a 404")

	w = doJSON(r, http.MethodGet, path, nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Owner view")

	w = doJSON(r, http.MethodGet, path, nil, adminToken)
	assert.Equal(t, http.StatusOK, w.Code, "admins may inspect non-active listings")
}

func TestGetActiveBusinessIsPublic(t *testing.T) {
	r := setupTest(t)
	owner, _ := createUser(t, "owner@example.com", models.UserTypeBusiness)
	listing := createBusiness(t, owner, models.StatusActive)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/business/%d", listing.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestListBusinessesDefaultsToActive(t *testing.T) {
	r := setupTest(t)
	owner1, _ := createUser(t, "a@example.com", models.UserTypeBusiness)
	owner2, _ := createUser(t, "b@example.com", models.UserTypeBusiness)
	createBusiness(t, owner1, models.StatusActive)
	createBusiness(t, owner2, models.StatusPending)

	w := doJSON(r, http.MethodGet, "/api/business", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	businesses := body["businesses"].([]any)
	assert.Len(t, businesses, 1)

	pagination := body["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pagination["currentPage"])
	assert.EqualValues(t, 1, pagination["totalPages"])
	assert.EqualValues(t, 1, pagination["total"])
}

func TestSoftDeleteFlipsOwnerBackToCustomer(t *testing.T) {
	r := setupTest(t)
	user, token := createUser(t, "owner@example.com", models.UserTypeBusiness)
	listing := createBusiness(t, user, models.StatusActive)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/business/%d", listing.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, models.StatusInactive, businessStatus(t, listing.ID))

	var owner models.User
	require.NoError(t, config.DB.First(&owner, user.ID).Error)
	assert.Equal(t, models.UserTypeCustomer, owner.UserType)

	// The record survives: this was a soft delete
	var count int64
	config.DB.Model(&models.Business{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSoftDeleteRequiresOwner(t *testing.T) {
	r := setupTest(t)
	owner, _ := createUser(t, "owner@example.com", models.UserTypeBusiness)
	listing := createBusiness(t, owner, models.StatusActive)
	_, strangerToken := createUser(t, "stranger@example.com", models.UserTypeCustomer)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/business/%d", listing.ID), nil, strangerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, models.StatusActive, businessStatus(t, listing.ID))
}

func TestGetMyBusiness(t *testing.T) {
	r := setupTest(t)
	user, token := createUser(t, "owner@example.com", models.UserTypeBusiness)

	w := doJSON(r, http.MethodGet, "/api/business/owner/my-business", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	createBusiness(t, user, models.StatusPending)
	w = doJSON(r, http.MethodGet, "/api/business/owner/my-business", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Test Plumbing Co")
}
