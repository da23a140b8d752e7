package fraud

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/gear-rental/pkg/common"
	"github.com/richxcame/gear-rental/pkg/validation"
)

// Handler handles HTTP requests for fraud assessment
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new fraud assessment handler
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers fraud assessment routes for internal callers.
// mw runs on every route in the group, e.g. the internal API key check.
func (h *Handler) RegisterRoutes(router *gin.Engine, mw ...gin.HandlerFunc) {
	api := router.Group("/api/v1/fraud", mw...)
	{
		api.POST("/assess", h.AssessRisk)
		api.POST("/check", h.CheckFraudRisk)
		api.POST("/device-trust", h.CheckDeviceTrust)

		api.GET("/users/:id/risk-profile", h.GetUserRiskProfile)
		api.GET("/users/:id/signals", h.GetUserSignals)
		api.DELETE("/users/:id/cache", h.InvalidateUser)
	}
}

// ActionContextRequest is the optional detail of the action under assessment
type ActionContextRequest struct {
	GearID            *uuid.UUID `json:"gear_id"`
	RentalID          *uuid.UUID `json:"rental_id"`
	Amount            *float64   `json:"amount"`
	DeviceFingerprint string     `json:"device_fingerprint" validate:"omitempty,max=512"`
	IPAddress         string     `json:"ip_address" validate:"omitempty,ip"`
	UserAgent         string     `json:"user_agent" validate:"omitempty,max=1024"`
	Message           string     `json:"message" validate:"omitempty,max=10000"`
}

func (r ActionContextRequest) toContext() ActionContext {
	return ActionContext{
		GearID:            r.GearID,
		RentalID:          r.RentalID,
		Amount:            r.Amount,
		DeviceFingerprint: r.DeviceFingerprint,
		IPAddress:         r.IPAddress,
		UserAgent:         r.UserAgent,
		Message:           r.Message,
	}
}

// AssessRequest represents a request to assess one user action
type AssessRequest struct {
	UserID     uuid.UUID            `json:"user_id" validate:"required"`
	ActionType string               `json:"action_type" validate:"required,action_type"`
	Context    ActionContextRequest `json:"context"`
}

// DeviceTrustRequest represents a device-only trust check
type DeviceTrustRequest struct {
	IPAddress         string `json:"ip_address" validate:"omitempty,ip"`
	UserAgent         string `json:"user_agent" validate:"omitempty,max=1024"`
	DeviceFingerprint string `json:"device_fingerprint" validate:"omitempty,max=512"`
}

func bindAndValidate(c *gin.Context, req interface{}) bool {
	if !common.BindJSON(c, req) {
		return false
	}
	if err := validation.ValidateStruct(req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) bindAssessRequest(c *gin.Context) (*AssessRequest, bool) {
	var req AssessRequest
	if !bindAndValidate(c, &req) {
		return nil, false
	}
	if req.Context.Amount != nil {
		if err := validation.ValidateAmount(*req.Context.Amount); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return nil, false
		}
	}
	req.ActionType = strings.ToLower(strings.TrimSpace(req.ActionType))
	return &req, true
}

// AssessRisk returns the full assessment for an action
func (h *Handler) AssessRisk(c *gin.Context) {
	req, ok := h.bindAssessRequest(c)
	if !ok {
		return
	}

	assessment, err := h.service.AssessRisk(c.Request.Context(), req.UserID, ActionType(req.ActionType), req.Context.toContext())
	if common.HandleServiceError(c, err, "failed to assess fraud risk") {
		return
	}

	common.SuccessResponse(c, assessment)
}

// CheckFraudRisk returns only whether the action may proceed
func (h *Handler) CheckFraudRisk(c *gin.Context) {
	req, ok := h.bindAssessRequest(c)
	if !ok {
		return
	}

	allowed, err := h.service.CheckFraudRisk(c.Request.Context(), req.UserID, ActionType(req.ActionType), req.Context.toContext())
	if common.HandleServiceError(c, err, "failed to check fraud risk") {
		return
	}

	common.SuccessResponse(c, gin.H{"allowed": allowed})
}

// CheckDeviceTrust rates a device without reference to a user
func (h *Handler) CheckDeviceTrust(c *gin.Context) {
	var req DeviceTrustRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.service.CheckDeviceTrustLevel(c.Request.Context(), req.IPAddress, req.UserAgent, req.DeviceFingerprint)
	if common.HandleServiceError(c, err, "failed to check device trust") {
		return
	}

	common.SuccessResponse(c, result)
}

// GetUserRiskProfile returns the user's trust score and monitoring signals
func (h *Handler) GetUserRiskProfile(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	summary, err := h.service.GetUserRiskProfile(c.Request.Context(), userID)
	if common.HandleServiceError(c, err, "failed to get user risk profile") {
		return
	}

	common.SuccessResponse(c, summary)
}

// GetUserSignals returns the passive monitoring signals for a user
func (h *Handler) GetUserSignals(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	signals, err := h.service.MonitorUserActivity(c.Request.Context(), userID)
	if common.HandleServiceError(c, err, "failed to monitor user activity") {
		return
	}

	common.SuccessResponse(c, gin.H{"user_id": userID, "signals": signals})
}

// InvalidateUser drops the user's cached profile and signals
func (h *Handler) InvalidateUser(c *gin.Context) {
	userID, ok := common.ParseUUIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	if common.HandleServiceError(c, h.service.InvalidateUser(c.Request.Context(), userID), "failed to invalidate fraud cache") {
		return
	}

	common.SuccessResponse(c, gin.H{"message": "fraud cache invalidated"})
}
