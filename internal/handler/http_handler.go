package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-events/internal/audit"
	"github.com/weiawesome/wes-events/internal/domain"
	"github.com/weiawesome/wes-events/internal/service"
	"github.com/weiawesome/wes-events/pkg/log"
	"github.com/weiawesome/wes-events/pkg/middleware"
	"github.com/weiawesome/wes-events/pkg/response"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// Handler handles HTTP requests for the event API.
type Handler struct {
	userService    service.UserService
	eventService   service.EventService
	joinService    service.JoinService
	authMiddleware *middleware.AuthMiddleware
	cookie         CookieConfig
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	userService service.UserService,
	eventService service.EventService,
	joinService service.JoinService,
	authMiddleware *middleware.AuthMiddleware,
	cookie CookieConfig,
) *Handler {
	return &Handler{
		userService:    userService,
		eventService:   eventService,
		joinService:    joinService,
		authMiddleware: authMiddleware,
		cookie:         cookie,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", h.authMiddleware.OptionalAuth(), h.Logout)
		}

		api.GET("/user", h.authMiddleware.RequireAuth(), h.Me)

		events := api.Group("/events")
		{
			// Public routes
			events.GET("", h.authMiddleware.OptionalAuth(), h.ListEvents)
			events.GET("/attendees", h.AttendeeCounts)
			events.GET("/:id", h.authMiddleware.OptionalAuth(), h.GetEvent)
			events.GET("/:id/attendees", h.ListAttendees)

			// Member routes
			member := events.Group("", h.authMiddleware.RequireAuth(), h.authMiddleware.RequireMember())
			member.POST("", h.CreateEvent)
			member.POST("/join", h.JoinEvent)
		}
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// Register creates an account.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind register request")
		response.BadRequest(c, "name, email and password are required")
		return
	}

	user, err := h.userService.Register(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			response.Conflict(c, "EMAIL_EXISTS", "email already registered")
			return
		}
		l.Error().Err(err).Msg("failed to register user")
		response.InternalError(c, "failed to register user")
		return
	}

	response.Created(c, user)
}

// Login authenticates a user and sets the session cookie.
func (h *Handler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	auth, err := h.userService.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		l.Error().Err(err).Msg("failed to login")
		response.InternalError(c, "failed to login")
		return
	}

	h.setSessionCookie(c, auth.Token, int(h.cookie.MaxAge.Seconds()))
	response.Success(c, auth)
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	audit.Log(c.Request.Context(), audit.ActionLogout, middleware.GetUserID(c), "user logged out")
	response.Success(c, gin.H{"message": "logged out"})
}

// Me returns the caller's identity.
func (h *Handler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	me, err := h.userService.Me(ctx, identityFrom(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "account no longer exists")
			return
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to load user")
		response.InternalError(c, "failed to load user")
		return
	}

	response.Success(c, me)
}

// ListEvents lists the events visible to the caller.
func (h *Handler) ListEvents(c *gin.Context) {
	ctx := c.Request.Context()

	resp, err := h.eventService.ListEvents(ctx, identityFrom(c))
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to list events")
		response.InternalError(c, "failed to list events")
		return
	}

	response.Success(c, resp)
}

// GetEvent returns one event with its attendee count.
func (h *Handler) GetEvent(c *gin.Context) {
	ctx := c.Request.Context()
	eventID := c.Param("id")

	detail, err := h.eventService.GetEvent(ctx, identityFrom(c), eventID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.NotFound(c, "event not found")
		case errors.Is(err, service.ErrLoginRequired):
			response.Forbidden(c, "LOGIN_REQUIRED", "this event is for logged-in users only")
		default:
			l := log.Ctx(ctx)
			l.Error().Err(err).Str(log.FieldEventID, eventID).Msg("failed to get event")
			response.InternalError(c, "failed to get event")
		}
		return
	}

	response.Success(c, detail)
}

// CreateEvent creates an event owned by the caller.
func (h *Handler) CreateEvent(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create event request")
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.CreateEvent(ctx, identityFrom(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrLoginRequired) {
			response.Forbidden(c, "LOGIN_REQUIRED", "a registered account is required")
			return
		}
		l.Error().Err(err).Msg("failed to create event")
		response.InternalError(c, "failed to create event")
		return
	}

	response.Created(c, event)
}

// JoinEvent records the caller as an attendee.
func (h *Handler) JoinEvent(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.JoinEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "event_id is required")
		return
	}

	exists, err := h.eventService.EventExists(ctx, req.EventID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldEventID, req.EventID).Msg("failed to check event")
		response.InternalError(c, "failed to join event")
		return
	}
	if !exists {
		response.NotFound(c, "event not found")
		return
	}

	result, err := h.joinService.JoinEvent(ctx, req.EventID, middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrDuplicateJoin) {
			response.Conflict(c, "DUPLICATE_JOIN", "you have already joined this event")
			return
		}
		l.Error().Err(err).Str(log.FieldEventID, req.EventID).Msg("failed to join event")
		response.InternalError(c, "failed to join event")
		return
	}

	response.Success(c, result)
}

// AttendeeCounts returns attendee counts keyed by event ID.
func (h *Handler) AttendeeCounts(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.eventService.AttendeeCounts(ctx)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to count attendees")
		response.InternalError(c, "failed to count attendees")
		return
	}

	response.Success(c, gin.H{"counts": counts})
}

// ListAttendees lists the attendees of one event.
func (h *Handler) ListAttendees(c *gin.Context) {
	ctx := c.Request.Context()
	eventID := c.Param("id")

	resp, err := h.eventService.ListAttendees(ctx, eventID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldEventID, eventID).Msg("failed to list attendees")
		response.InternalError(c, "failed to list attendees")
		return
	}

	response.Success(c, resp)
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	// Browsers drop SameSite=None cookies that are not Secure.
	if h.cookie.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(h.authMiddleware.CookieName(), value, maxAge, "/", "", h.cookie.Secure, true)
}

func identityFrom(c *gin.Context) domain.Identity {
	return domain.Identity{
		UserID:  middleware.GetUserID(c),
		Name:    middleware.GetUsername(c),
		IsGuest: middleware.IsGuest(c),
	}
}
