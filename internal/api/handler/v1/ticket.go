package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventgate/backend/internal/api/handler/v1/request"
	"github.com/eventgate/backend/internal/api/handler/v1/response"
	"github.com/eventgate/backend/internal/domain"
	"github.com/eventgate/backend/internal/service"
)

type TicketService interface {
	CheckIn(ctx context.Context, ticketID, currentUserID string) (domain.Ticket, error)
	GetTicket(ctx context.Context, id string) (domain.Ticket, error)
	CreateTicket(ctx context.Context, eventID, ticketNumber, currentUserID string) (domain.Ticket, error)
}

type TicketHandler struct {
	svc  TicketService
	uSvc UserService
}

func NewTicketHandler(svc TicketService, uSvc UserService) *TicketHandler {
	return &TicketHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleCheckInTicket godoc
// @Summary      Check in a ticket
// @Description  Marks the ticket checked-in if the caller organizes its event and it is still open.
// @Tags         tickets
// @Produce      json
// @Param        ticketID  path      string  true  "ticket ID"
// @Success      200  {object}  domain.Ticket
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/{ticketID}/checkin [post]
// @Security BearerAuth
func (h *TicketHandler) HandleCheckInTicket(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ticketID := ctx.Param("ticketID")

	ticket, err := h.svc.CheckIn(ctx.Request.Context(), ticketID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", ticketID))
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ticketID", ticketID))
		case errors.Is(err, service.ErrTicketWithoutEvent):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrTicketWithoutEvent))
		case errors.Is(err, service.ErrNotOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotOrganizer))
		case errors.Is(err, service.ErrAlreadyCheckedIn):
			response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyCheckedIn))
		case errors.Is(err, service.ErrCheckInConflict):
			response.RenderErr(ctx, response.ErrConflict(service.ErrCheckInConflict))
		default:
			err = fmt.Errorf("v1.HandleCheckInTicket -> h.svc.CheckIn -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, ticket)
}

// HandleGetTicket godoc
// @Summary      Get a ticket by ID
// @Tags         tickets
// @Produce      json
// @Param        ticketID  path      string  true  "ticket ID"
// @Success      200  {object}  domain.Ticket
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/{ticketID} [get]
// @Security BearerAuth
func (h *TicketHandler) HandleGetTicket(ctx *gin.Context) {
	ticketID := ctx.Param("ticketID")

	ticket, err := h.svc.GetTicket(ctx.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "ID", ticketID))
			return
		}

		err = fmt.Errorf("v1.HandleGetTicket -> h.svc.GetTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, ticket)
}

// HandleCreateTicket godoc
// @Summary      Issue a ticket for an event
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateTicketRequest  true  "ticket details"
// @Success      201  {object}  domain.Ticket
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets [post]
// @Security BearerAuth
func (h *TicketHandler) HandleCreateTicket(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var input request.CreateTicketRequest
	if err := ctx.ShouldBindJSON(&input); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := input.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, err := h.svc.CreateTicket(ctx.Request.Context(), input.EventID, input.TicketNumber, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", input.EventID))
		case errors.Is(err, service.ErrNotOrganizer):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrNotOrganizer))
		default:
			err = fmt.Errorf("v1.HandleCreateTicket -> h.svc.CreateTicket -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, ticket)
}
