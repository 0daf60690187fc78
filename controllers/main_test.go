// file: controllers/main_test.go
package controllers

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"school-activities/logger"
)

func TestMain(m *testing.M) {
	logger.Silence()
	gin.SetMode(gin.TestMode)

	code := m.Run()
	os.Exit(code)
}
