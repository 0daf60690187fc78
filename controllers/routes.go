// file: controllers/routes.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"school-activities/services"
)

// Route paths served by the portal.
const (
	IndexPath      = "/"
	FragmentPath   = "/fragments/activities"
	SignupPath     = "/signup"
	UnregisterPath = "/activities/:activity/unregister"
	LivePath       = "/live"
	QRCodePath     = "/qrcode"
	HealthPath     = "/health"
)

// PortalRoutes builds action URLs for the templates.
type PortalRoutes struct{}

// UnregisterAction is the form action of a roster entry's remove control. The activity
// name is a single escaped path segment, so names containing "/" still route.
func (PortalRoutes) UnregisterAction(activity string) string {
	return "/activities/" + services.EncodeComponent(activity) + "/unregister"
}

// Register mounts the portal handlers on router. router.UseRawPath must be set so
// escaped slashes in activity names reach the :activity parameter intact.
func (pc *PortalController) Register(router gin.IRouter) {
	router.GET(IndexPath, pc.Index)
	router.GET(FragmentPath, pc.ActivitiesFragment)
	router.POST(SignupPath, pc.Signup)
	router.POST(UnregisterPath, pc.Unregister)
	router.DELETE(UnregisterPath, pc.Unregister)
}
