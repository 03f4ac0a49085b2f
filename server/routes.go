package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/oidcauth/errors"
	"github.com/kbukum/oidcauth/plugin"
	"github.com/kbukum/oidcauth/version"
)

// refreshCookieMaxAge is how long the refresh cookie is kept by browsers.
const refreshCookieMaxAge = 30 * 24 * 60 * 60

// RegisterRoutes mounts the authentication endpoints and the provider
// callback route on the engine.
func RegisterRoutes(engine *gin.Engine, p *plugin.Plugin) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "build": version.Get()})
	})

	auth := engine.Group("/auth")
	auth.POST("/url", authorizationURLHandler(p))
	auth.POST("/refresh", refreshHandler(p))
	auth.POST("/logout", logoutHandler(p))

	// The provider redirects back here; routing below the prefix is the
	// plugin's own suffix dispatch.
	engine.Any("/plugins/*path", webhookHandler(p))
}

func authorizationURLHandler(p *plugin.Plugin) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := bindPayload(c)
		if payload == nil {
			return
		}
		data, appErr := p.ExternalAuthenticationURL(c.Request.Context(), payload, nil)
		if appErr != nil {
			writeError(c, appErr)
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

func refreshHandler(p *plugin.Plugin) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := bindPayload(c)
		if payload == nil {
			return
		}
		data, appErr := p.ExternalRefresh(c.Request.Context(), payload, pluginRequest(c), nil)
		if appErr != nil {
			writeError(c, appErr)
			return
		}
		if data.RefreshToken != "" {
			c.SetCookie(plugin.RefreshTokenCookieName, data.RefreshToken, refreshCookieMaxAge, "/", "", true, true)
		}
		c.JSON(http.StatusOK, data)
	}
}

func logoutHandler(p *plugin.Plugin) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := bindPayload(c)
		if payload == nil {
			return
		}
		data, appErr := p.ExternalLogout(c.Request.Context(), payload, nil)
		if appErr != nil {
			writeError(c, appErr)
			return
		}
		c.JSON(http.StatusOK, data)
	}
}

func webhookHandler(p *plugin.Plugin) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := p.Webhook(c.Request.Context(), pluginRequest(c))
		for key, value := range resp.Headers {
			c.Header(key, value)
		}
		if resp.Body != nil {
			c.JSON(resp.StatusCode, resp.Body)
			return
		}
		c.Status(resp.StatusCode)
	}
}

// bindPayload decodes the JSON body into a payload, writing the error
// response itself when the body is malformed. An empty body is allowed.
func bindPayload(c *gin.Context) plugin.Payload {
	payload := plugin.Payload{}
	if c.Request.ContentLength == 0 {
		return payload
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errors.Validation("request body must be a JSON object of string fields").WithCause(err))
		return nil
	}
	return payload
}

// pluginRequest converts the Gin request into the plugin's view.
func pluginRequest(c *gin.Context) *plugin.Request {
	cookies := make(map[string]string)
	for _, cookie := range c.Request.Cookies() {
		cookies[cookie.Name] = cookie.Value
	}
	return &plugin.Request{
		Method:  c.Request.Method,
		URL:     c.Request.URL,
		Cookies: cookies,
	}
}

func writeError(c *gin.Context, appErr *errors.AppError) {
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}
