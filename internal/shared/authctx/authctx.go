// Package authctx carries the authenticated username through a gin request.
// Both the session cookie middleware and the JWT middleware write it; handlers read it.
package authctx

import "github.com/gin-gonic/gin"

const usernameKey = "username"

// SetUsername records the authenticated username on the request context.
func SetUsername(c *gin.Context, username string) {
	c.Set(usernameKey, username)
}

// Username returns the authenticated username, if any.
func Username(c *gin.Context) (string, bool) {
	v, ok := c.Get(usernameKey)
	if !ok {
		return "", false
	}
	username, ok := v.(string)
	return username, ok && username != ""
}
