package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eventgate/backend/internal/api/handler/v1/request"
	"github.com/eventgate/backend/internal/api/handler/v1/response"
	"github.com/eventgate/backend/internal/domain"
	"github.com/eventgate/backend/internal/service"
)

type EventService interface {
	CreateEvent(ctx context.Context, event domain.Event, organizerID string) (domain.Event, error)
	EnrichedEvents(ctx context.Context, userID string) ([]domain.EnrichedEvent, error)
	ComputeStats(ctx context.Context, eventID string) (domain.TicketStats, error)
	GetEvent(ctx context.Context, id string) (domain.Event, error)
}

type EventHandler struct {
	svc  EventService
	uSvc UserService
}

func NewEventHandler(svc EventService, uSvc UserService) *EventHandler {
	return &EventHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleGetEvents godoc
// @Summary      List the caller's events
// @Description  Events organized by the authenticated user, with ticket stats and status, live events first.
// @Tags         events
// @Produce      json
// @Success      200  {array}   domain.EnrichedEvent
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [get]
// @Security BearerAuth
func (h *EventHandler) HandleGetEvents(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, err := h.svc.EnrichedEvents(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetEvents -> h.svc.EnrichedEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleCreateEvent godoc
// @Summary      Create a new event
// @Description  Only users with the "organizer" role can create events.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateEventRequest  true  "event details"
// @Success      201    {object}  domain.Event
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events [post]
// @Security BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if user.Role != "organizer" {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("user %v is not an organizer", user.ID)))
		return
	}

	var input request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	startDate, err := time.Parse(time.RFC3339, input.StartDate)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid start_date format: %v", err)))
		return
	}

	event := domain.Event{
		Title:     input.Title,
		StartDate: startDate,
		Images:    input.Images,
	}

	created, err := h.svc.CreateEvent(ctx.Request.Context(), event, user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetEventStats godoc
// @Summary      Ticket stats for an event
// @Tags         events
// @Produce      json
// @Param        eventID  path      string  true  "event ID"
// @Success      200  {object}  domain.TicketStats
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/stats [get]
// @Security BearerAuth
func (h *EventHandler) HandleGetEventStats(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID := ctx.Param("eventID")

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetEventStats -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	if domain.IDFromRef(event.OrganizerRef) != user.ID {
		response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotOrganizer))
		return
	}

	stats, err := h.svc.ComputeStats(ctx.Request.Context(), eventID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetEventStats -> h.svc.ComputeStats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
