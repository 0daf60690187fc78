// file: controllers/portal_controller.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"school-activities/logger"
	"school-activities/metrics"
	"school-activities/models"
	"school-activities/services"
	"school-activities/views"
	"school-activities/websocket"
)

// Texts shown when an action fails without a server-provided detail.
const (
	MissingFieldsText    = "Please provide an email and select an activity."
	SignupRejectedText   = "An error occurred"
	SignupFailedText     = "Failed to sign up. Please try again."
	UnregisterFailedText = "Failed to unregister. Please try again."
)

// ClientIDHeader identifies the page that sent a mutation, so its own live echo is ignored.
const ClientIDHeader = "X-Client-ID"

const maxClientIDLength = 64

// Notifier is told about every successful signup or unregister.
type Notifier interface {
	NotifyCatalogChanged(activity, change, origin string)
}

// PortalController serves the activity page and forwards signup/unregister actions.
type PortalController struct {
	api      services.ActivityAPI
	store    *services.CatalogStore
	notifier Notifier
	recorder metrics.Recorder
	routes   views.Routes
	liveURL  string
}

// NewPortalController wires the controller. notifier and recorder may be nil.
func NewPortalController(api services.ActivityAPI, store *services.CatalogStore, notifier Notifier, recorder metrics.Recorder, liveURL string) *PortalController {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &PortalController{
		api:      api,
		store:    store,
		notifier: notifier,
		recorder: recorder,
		routes:   PortalRoutes{},
		liveURL:  liveURL,
	}
}

// Index renders the full page from a fresh catalog, with any pending flash notice.
func (pc *PortalController) Index(c *gin.Context) {
	list, options := pc.refreshed(c.Request.Context())
	page := pc.newPage(list, options)
	page.Notice = takeNotice(c)
	c.HTML(http.StatusOK, "index.html", page)
}

// ActivitiesFragment renders the list and dropdown for in-place refreshes.
func (pc *PortalController) ActivitiesFragment(c *gin.Context) {
	list, options := pc.refreshed(c.Request.Context())
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "fragment.html", views.NewFragment(list, options))
}

// Signup forwards a signup to the activities API.
func (pc *PortalController) Signup(c *gin.Context) {
	form := views.FormValues{
		Email:    strings.TrimSpace(c.PostForm("email")),
		Activity: strings.TrimSpace(c.PostForm("activity")),
	}
	if form.Email == "" || form.Activity == "" {
		logger.Warn.Println("Signup: Missing email or activity")
		pc.recorder.Signup(metrics.OutcomeInvalid)
		pc.signupFailed(c, http.StatusBadRequest, MissingFieldsText, form)
		return
	}

	result, err := pc.api.Signup(c.Request.Context(), form.Activity, form.Email)
	if err != nil {
		f := classify(err, SignupRejectedText, SignupFailedText)
		logFailure("Signup", f, err)
		pc.recorder.Signup(f.outcome)
		pc.signupFailed(c, f.status, f.text, form)
		return
	}

	logger.Info.Printf("Signup: %s signed up for %q", form.Email, form.Activity)
	pc.recorder.Signup(metrics.OutcomeSuccess)
	pc.notify(c, form.Activity, websocket.ChangeSignup)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, result)
		return
	}
	addNotice(c, views.NoticeSuccess, result.Message)
	c.Redirect(http.StatusSeeOther, "/")
}

// Unregister forwards an unregister to the activities API. The email comes from the
// query string (script clients, DELETE) or the form body (POST).
func (pc *PortalController) Unregister(c *gin.Context) {
	activity := c.Param("activity")
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		email = strings.TrimSpace(c.PostForm("email"))
	}
	if activity == "" || email == "" {
		logger.Warn.Println("Unregister: Missing email or activity")
		pc.recorder.Unregister(metrics.OutcomeInvalid)
		pc.unregisterFailed(c, http.StatusBadRequest, UnregisterFailedText)
		return
	}

	result, err := pc.api.Unregister(c.Request.Context(), activity, email)
	if err != nil {
		f := classify(err, UnregisterFailedText, UnregisterFailedText)
		logFailure("Unregister", f, err)
		pc.recorder.Unregister(f.outcome)
		pc.unregisterFailed(c, f.status, f.text)
		return
	}

	logger.Info.Printf("Unregister: %s removed from %q", email, activity)
	pc.recorder.Unregister(metrics.OutcomeSuccess)
	pc.notify(c, activity, websocket.ChangeUnregister)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, result)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// refreshed fetches the catalog. On failure the list shows the failure text and the
// dropdown keeps the options of the last good snapshot. The fragment template leaves
// the dropdown out entirely for a failed list so the page keeps its own.
func (pc *PortalController) refreshed(ctx context.Context) (views.ListView, []views.Option) {
	catalog, err := pc.store.Refresh(ctx)
	if err != nil {
		logger.Error.Printf("refreshed: Error fetching activities: %v", err)
		last, _ := pc.store.Current()
		return views.FailedList(), views.BuildOptions(last)
	}
	return views.BuildList(catalog, pc.routes), views.BuildOptions(catalog)
}

// cached renders the last good snapshot without fetching, for failure responses.
// Before the first successful fetch that is an empty list: no fetch has failed yet.
func (pc *PortalController) cached() (views.ListView, []views.Option) {
	catalog, _ := pc.store.Current()
	if catalog == nil {
		return views.ListView{}, nil
	}
	return views.BuildList(catalog, pc.routes), views.BuildOptions(catalog)
}

func (pc *PortalController) newPage(list views.ListView, options []views.Option) views.Page {
	page := views.NewPage(list, options)
	page.LiveURL = pc.liveURL
	return page
}

func (pc *PortalController) signupFailed(c *gin.Context, status int, text string, form views.FormValues) {
	if wantsJSON(c) {
		c.JSON(status, models.ErrorBody{Detail: text})
		return
	}
	page := pc.newPage(pc.cached())
	page.Notice = views.NewNotice(views.NoticeError, text)
	page.Form = form
	c.HTML(status, "index.html", page)
}

func (pc *PortalController) unregisterFailed(c *gin.Context, status int, text string) {
	if wantsJSON(c) {
		c.JSON(status, models.ErrorBody{Detail: text})
		return
	}
	page := pc.newPage(pc.cached())
	page.Alert = text
	c.HTML(status, "index.html", page)
}

func (pc *PortalController) notify(c *gin.Context, activity, change string) {
	if pc.notifier == nil {
		return
	}
	origin := c.GetHeader(ClientIDHeader)
	if len(origin) > maxClientIDLength {
		origin = ""
	}
	pc.notifier.NotifyCatalogChanged(activity, change, origin)
}

// failure is how a failed API call is reported to the visitor.
type failure struct {
	status  int
	text    string
	outcome string
}

// classify maps an API error to a response. Backend 4xx statuses are mirrored; anything
// else becomes 502 Bad Gateway.
func classify(err error, rejectedText, unavailableText string) failure {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		f := failure{status: apiErr.StatusCode, text: apiErr.Detail, outcome: metrics.OutcomeRejected}
		if f.text == "" {
			f.text = rejectedText
		}
		if f.status < 400 || f.status >= 500 {
			f.status = http.StatusBadGateway
		}
		return f
	}
	return failure{status: http.StatusBadGateway, text: unavailableText, outcome: metrics.OutcomeUnavailable}
}

func logFailure(handler string, f failure, err error) {
	if f.outcome == metrics.OutcomeRejected {
		logger.Warn.Printf("%s: Rejected by activities API: %v", handler, err)
		return
	}
	logger.Error.Printf("%s: Activities API call failed: %v", handler, err)
}

// wantsJSON reports whether the caller is the page script rather than a plain form post.
func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// addNotice stores a notice for the next page render (post/redirect/get).
func addNotice(c *gin.Context, kind, text string) {
	session := sessions.Default(c)
	session.AddFlash(text, kind)
	if err := session.Save(); err != nil {
		logger.Error.Printf("addNotice: Error saving session: %v", err)
	}
}

// takeNotice pops the pending notice, if any. Errors win over successes.
func takeNotice(c *gin.Context) *views.Notice {
	session := sessions.Default(c)
	var notice *views.Notice
	for _, kind := range []string{views.NoticeSuccess, views.NoticeError} {
		for _, flash := range session.Flashes(kind) {
			if text, ok := flash.(string); ok {
				notice = views.NewNotice(kind, text)
			}
		}
	}
	if notice != nil {
		if err := session.Save(); err != nil {
			logger.Error.Printf("takeNotice: Error saving session: %v", err)
		}
	}
	return notice
}
