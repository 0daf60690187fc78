// Package server assembles the portal's gin engine.
// file: server/router.go
package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"school-activities/config"
	"school-activities/controllers"
	"school-activities/metrics"
	"school-activities/middleware"
	"school-activities/services"
	"school-activities/web"
	"school-activities/websocket"
)

const (
	// SessionName is the cookie holding flash notices.
	SessionName   = "portal_session"
	sessionMaxAge = 3600

	// MetricsPath is served only when a scrape handler is configured.
	MetricsPath = "/metrics"
)

// Dependencies are the long-lived collaborators NewRouter wires into the handlers.
type Dependencies struct {
	API      services.ActivityAPI
	Recorder metrics.Recorder
	Metrics  http.Handler
	Hub      *websocket.Hub
}

// NewRouter builds the gin engine with middleware, templates and every route.
func NewRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Recorder == nil {
		deps.Recorder = metrics.Nop{}
	}
	if deps.Hub == nil {
		deps.Hub = websocket.NewHub(deps.Recorder)
	}

	router := gin.New()
	// Activity names may contain "/", sent as %2F inside one path segment.
	router.UseRawPath = true
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.SecurityHeaders())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.ApplicationURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(SessionName, store))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", web.Static())

	controllers.SetConfig(cfg.ApplicationURL)
	router.GET(controllers.HealthPath, controllers.Health)
	router.GET(controllers.QRCodePath, controllers.GetQRCode)
	router.GET(controllers.LivePath, gin.WrapF(deps.Hub.ServeWs))
	if deps.Metrics != nil {
		router.GET(MetricsPath, gin.WrapH(deps.Metrics))
	}

	catalogs := services.NewCatalogStore(deps.API, deps.Recorder, cfg.RequestTimeout)
	portal := controllers.NewPortalController(deps.API, catalogs, deps.Hub, deps.Recorder, controllers.LivePath)
	portal.Register(router)

	return router, nil
}
