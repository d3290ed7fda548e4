// internal/api/handlers.go
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weblife-game/weblife/internal/models"
	"github.com/weblife-game/weblife/internal/services"
	"github.com/weblife-game/weblife/internal/utils"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	SessionService *services.SessionService
	TurnService    *services.TurnService
	SocialService  *services.SocialService
	ConfigService  *services.ConfigService
	Response       *ResponseHelper
}

// NewHandler creates the API handler.
func NewHandler(
	sessionService *services.SessionService,
	turnService *services.TurnService,
	socialService *services.SocialService,
	configService *services.ConfigService,
) *Handler {
	return &Handler{
		SessionService: sessionService,
		TurnService:    turnService,
		SocialService:  socialService,
		ConfigService:  configService,
		Response:       NewResponseHelper(),
	}
}

// ---------------------------------------------------------------
// Session lifecycle
// ---------------------------------------------------------------

// CreateSession starts a new game from the character setup.
func (h *Handler) CreateSession(c *gin.Context) {
	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid session request: "+err.Error())
		return
	}

	session, err := h.SessionService.CreateSession(c.Request.Context(), req)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Created(c, session, "a new life begins")
}

// ListSessions returns every live session.
func (h *Handler) ListSessions(c *gin.Context) {
	h.Response.Success(c, h.SessionService.ListSessions())
}

// GetSession returns one session snapshot.
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.SessionService.GetSession(c.Param("id"))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}
	h.Response.Success(c, session)
}

// DeleteSession removes a session.
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.SessionService.DeleteSession(c.Param("id")); err != nil {
		h.Response.AppError(c, err)
		return
	}
	h.Response.Success(c, nil, "session deleted")
}

// GetSessionLogs returns the journal grouped by year.
func (h *Handler) GetSessionLogs(c *gin.Context) {
	session, err := h.SessionService.GetSession(c.Param("id"))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}
	h.Response.Success(c, session.YearLogs())
}

// ---------------------------------------------------------------
// Turn loop
// ---------------------------------------------------------------

// AdvanceTurn plays one year of the session.
func (h *Handler) AdvanceTurn(c *gin.Context) {
	session, err := h.TurnService.AdvanceTurn(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.notifySession(session)
	h.Response.Success(c, session)
}

// ChoiceRequest answers a pending interactive event.
type ChoiceRequest struct {
	ResultID string `json:"result_id" binding:"required"`
}

// ResolveChoice applies the player's answer to the pending event and
// finishes the interrupted year.
func (h *Handler) ResolveChoice(c *gin.Context) {
	var req ChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid choice request: "+err.Error())
		return
	}

	session, err := h.TurnService.ResolveChoice(c.Request.Context(), c.Param("id"), req.ResultID)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.notifySession(session)
	h.Response.Success(c, session)
}

// ---------------------------------------------------------------
// Social media
// ---------------------------------------------------------------

// CreateSocialAccount activates a platform account.
func (h *Handler) CreateSocialAccount(c *gin.Context) {
	session, err := h.SocialService.CreateAccount(c.Param("id"), models.Platform(c.Param("platform")))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.notifySession(session)
	h.Response.Created(c, session)
}

// DeleteSocialAccount wipes a platform account, ban included.
func (h *Handler) DeleteSocialAccount(c *gin.Context) {
	session, err := h.SocialService.DeleteAccount(c.Param("id"), models.Platform(c.Param("platform")))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.notifySession(session)
	h.Response.Success(c, session)
}

// PostRequest carries the content type of a social post.
type PostRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// CreateSocialPost publishes content on a platform.
func (h *Handler) CreateSocialPost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid post request: "+err.Error())
		return
	}

	session, err := h.SocialService.Post(c.Request.Context(), c.Param("id"), models.Platform(c.Param("platform")), req.ContentType)
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.notifySession(session)
	h.Response.Success(c, session)
}

// BuyFakeFollowers runs the fake-follower gamble.
func (h *Handler) BuyFakeFollowers(c *gin.Context) {
	session, err := h.SocialService.BuyFakeFollowers(c.Param("id"), models.Platform(c.Param("platform")))
	if err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.notifySession(session)
	h.Response.Success(c, session)
}

// ---------------------------------------------------------------
// Catalogs
// ---------------------------------------------------------------

// GetPlatforms returns the static platform catalog.
func (h *Handler) GetPlatforms(c *gin.Context) {
	h.Response.Success(c, models.PlatformCatalog())
}

// GetGeography returns the birthplace catalog for the setup screen.
func (h *Handler) GetGeography(c *gin.Context) {
	countries, err := models.Geography()
	if err != nil {
		h.Response.InternalError(c, err.Error())
		return
	}
	h.Response.Success(c, countries)
}

// ---------------------------------------------------------------
// LLM configuration
// ---------------------------------------------------------------

// GetLLMStatus reports the narrative backend's health and settings.
func (h *Handler) GetLLMStatus(c *gin.Context) {
	h.Response.Success(c, h.ConfigService.GetLLMStatus())
}

// UpdateLLMConfig switches the narrative provider at runtime.
func (h *Handler) UpdateLLMConfig(c *gin.Context) {
	var req services.UpdateLLMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid config request: "+err.Error())
		return
	}

	if err := h.ConfigService.UpdateLLMConfig(req); err != nil {
		h.Response.AppError(c, err)
		return
	}

	h.Response.Success(c, h.ConfigService.GetLLMStatus(), "provider updated")
}

// ---------------------------------------------------------------
// Operational
// ---------------------------------------------------------------

// GetHealth is the liveness probe.
func (h *Handler) GetHealth(c *gin.Context) {
	status := h.ConfigService.GetLLMStatus()
	h.Response.Success(c, gin.H{
		"status":    "ok",
		"llm_ready": status.Ready,
		"time":      time.Now().Format(time.RFC3339),
	})
}

// GetMetrics exposes the in-process counters and timings.
func (h *Handler) GetMetrics(c *gin.Context) {
	h.Response.Success(c, utils.GetMetricsCollector().Snapshot())
}

// notifySession pushes the updated session state to websocket watchers.
func (h *Handler) notifySession(session *models.Session) {
	if session == nil {
		return
	}
	wsManager.BroadcastToSession(session.ID, map[string]interface{}{
		"type":      "session_update",
		"session":   session,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
