// file: controllers/helpers_test.go
package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"school-activities/models"
	"school-activities/services"
	"school-activities/web"
)

const testSessionName = "testsession"

// chessCatalog is the single-activity catalog used across the handler tests.
const chessCatalog = `{
	"Chess Club": {
		"description": "Learn strategies and compete in chess tournaments",
		"schedule": "Fridays, 3:30 PM - 5:00 PM",
		"max_participants": 2,
		"participants": ["a@x.com"]
	}
}`

// setupTestRouter creates a gin engine with session middleware, the embedded templates
// and the portal handlers backed by api.
func setupTestRouter(t *testing.T, api services.ActivityAPI, notifier Notifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.UseRawPath = true

	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions(testSessionName, store))

	tmpl, err := web.Templates()
	require.NoError(t, err)
	router.SetHTMLTemplate(tmpl)

	pc := NewPortalController(api, services.NewCatalogStore(api, nil, time.Second), notifier, nil, LivePath)
	pc.Register(router)
	return router
}

// decodeCatalog parses a catalog body the way the API client does.
func decodeCatalog(t *testing.T, body string) *models.Catalog {
	t.Helper()
	var catalog models.Catalog
	require.NoError(t, json.Unmarshal([]byte(body), &catalog))
	return &catalog
}

// perform sends a request through router. form, when non-empty, is sent url-encoded.
func perform(router *gin.Engine, method, target, form string, headers map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// sessionCookie extracts the session cookie set by a response.
func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == testSessionName {
			return c
		}
	}
	return nil
}

var jsonHeaders = map[string]string{"Accept": "application/json"}

// notification is one recorded NotifyCatalogChanged call.
type notification struct {
	activity, change, origin string
}

// fakeNotifier records live notifications.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (f *fakeNotifier) NotifyCatalogChanged(activity, change, origin string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notification{activity, change, origin})
}

func (f *fakeNotifier) recorded() []notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification(nil), f.calls...)
}
