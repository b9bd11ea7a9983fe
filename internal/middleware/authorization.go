package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/tokengraph/indexer/api"
	config "github.com/tokengraph/indexer/configs"
)

var ErrUnauthorized = fmt.Errorf("invalid username or password")

// Authorization enforces basic auth when credentials are configured.
func Authorization(c *gin.Context) {
	cfg := config.Cfg.API.BasicAuth
	if cfg.Username == "" && cfg.Password == "" {
		c.Next()
		return
	}

	username, password, ok := c.Request.BasicAuth()
	if !ok || username != cfg.Username || password != cfg.Password {
		api.UnauthorizedErrorHandler(c, ErrUnauthorized)
		c.Abort()
		return
	}
	c.Next()
}
