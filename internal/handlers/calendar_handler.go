package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/bashbay-calendar/internal/calendar"
	"github.com/joshua-takyi/bashbay-calendar/internal/helpers"
	"github.com/joshua-takyi/bashbay-calendar/internal/middleware"
	"github.com/joshua-takyi/bashbay-calendar/internal/models"
	"github.com/joshua-takyi/bashbay-calendar/internal/services"
)

func GetCalendar(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := venueIDParam(c)
		if !ok {
			return
		}

		view, err := cs.DateStatuses(c.Request.Context(), venueID)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(view, ""))
	}
}

func GetSlots(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := venueIDParam(c)
		if !ok {
			return
		}

		date := strings.TrimSpace(c.Query("date"))
		if date == "" {
			writeError(c, calendar.ErrNoDate)
			return
		}

		view, err := cs.SlotsForDate(c.Request.Context(), venueID, date)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(view, ""))
	}
}

func ToggleSlot(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, ok := venueIDParam(c)
		if !ok {
			return
		}

		var req services.SelectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid request body"))
			return
		}
		if strings.TrimSpace(req.Date) == "" {
			writeError(c, calendar.ErrNoDate)
			return
		}
		if err := models.Validate.Struct(req); err != nil {
			writeError(c, calendar.ErrSlotOutOfRange)
			return
		}

		view, err := cs.ToggleSlot(c.Request.Context(), venueID, req)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(view, ""))
	}
}

func Checkout(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("unauthorized"))
			return
		}

		venueID, ok := venueIDParam(c)
		if !ok {
			return
		}

		var req services.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid request body"))
			return
		}

		handoff, err := cs.Checkout(c.Request.Context(), venueID, claims.UserID, req)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, helpers.SuccessResponse(handoff, "Booking draft saved"))
	}
}

func venueIDParam(c *gin.Context) (uuid.UUID, bool) {
	raw := helpers.StringTrim(c.Param("id"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("venue ID is required"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse("invalid venue ID format"))
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain errors to responses. Anything unrecognised goes
// to ErrorHandler as a 500.
func writeError(c *gin.Context, err error) {
	if v, ok := calendar.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, helpers.FieldErrorResponse(v.Field, v.Message))
		return
	}

	switch {
	case errors.Is(err, calendar.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrVenueNotFound):
		c.JSON(http.StatusNotFound, helpers.ErrorResponse("venue not found"))
	case errors.Is(err, models.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, helpers.ErrorResponse("no pending booking"))
	case errors.Is(err, services.ErrVenueNotBookable):
		c.JSON(http.StatusConflict, helpers.ErrorResponse(err.Error()))
	default:
		_ = c.Error(err)
	}
}
