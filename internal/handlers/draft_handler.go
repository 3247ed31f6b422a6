package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/bashbay-calendar/internal/helpers"
	"github.com/joshua-takyi/bashbay-calendar/internal/middleware"
	"github.com/joshua-takyi/bashbay-calendar/internal/services"
)

func GetMyDraft(ds *services.DraftService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("unauthorized"))
			return
		}

		draft, err := ds.GetDraft(c.Request.Context(), claims.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		if !claims.IsOwner(draft.UserID) {
			c.JSON(http.StatusNotFound, helpers.ErrorResponse("no pending booking"))
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(draft, ""))
	}
}

func DiscardMyDraft(ds *services.DraftService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, helpers.ErrorResponse("unauthorized"))
			return
		}

		if err := ds.DiscardDraft(c.Request.Context(), claims.UserID); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Pending booking discarded"))
	}
}
