package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/bashbay-calendar/internal/helpers"
)

func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"status": "ok"}, ""))
	}
}
