package handlers

import (
	"log"
	"net/http"

	"votearena/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondError translates an application error into the {success:false,
// message} envelope with the status code of its kind. Unexpected errors are
// logged server-side and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		log.Printf("[%s %s] %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"message": apperr.ClientMessage(err),
	})
}
