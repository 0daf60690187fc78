// Package controllers file: controllers/page_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"school-activities/logger"
	"school-activities/services"
)

// QRCodeSize is the edge length of the poster QR code in pixels.
const QRCodeSize = 300

// ApplicationURL is the public portal address encoded in the poster QR code.
var ApplicationURL string

// SetConfig sets the public application URL
func SetConfig(appURL string) {
	ApplicationURL = appURL
	logger.Info.Printf("SetConfig: Global config updated: ApplicationURL=%s", appURL)
}

// Health answers load balancer checks.
func Health(c *gin.Context) {
	logger.Debug.Println("Health: Health check requested")
	c.String(http.StatusOK, "OK")
}

// GetQRCode displays a QR code for the application URL, for hallway posters
func GetQRCode(c *gin.Context) {
	logger.Info.Println("GetQRCode: Generating QR code")

	qrBytes, err := services.GenerateQRCode(ApplicationURL, QRCodeSize, QRCodeSize, services.QRCodeEncoder(qrcode.Encode))
	if err != nil {
		logger.Error.Printf("GetQRCode: Error generating QR code: %v", err)
		c.String(http.StatusInternalServerError, "QR generation failed")
		return
	}

	c.Header("Content-Disposition", "inline; filename=\"qrcode.png\"")
	c.Data(http.StatusOK, "image/png", qrBytes)
}
