package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cresszm/cress/internal/audit"
	"github.com/cresszm/cress/internal/models"
	"github.com/cresszm/cress/pkg/config"
	"github.com/cresszm/cress/pkg/storage"
)

// fakeMailer records sends and fails for addresses listed in failFor.
type fakeMailer struct {
	sent    []string
	failFor map[string]bool
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.failFor[to] {
		return fmt.Errorf("smtp refused %s", to)
	}
	f.sent = append(f.sent, to)
	return nil
}

type testApp struct {
	engine *gin.Engine
	db     *gorm.DB
	mailer *fakeMailer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if config.GlobalConfig == nil {
		require.NoError(t, config.Load())
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	require.NoError(t, audit.NewRecorder(db).Register(db))

	mailer := &fakeMailer{failFor: map[string]bool{}}
	engine := gin.New()
	NewHandlers(db, storage.NewLocalStore(t.TempDir()), mailer, nil, nil).Register(engine)

	return &testApp{engine: engine, db: db, mailer: mailer}
}

func (app *testApp) request(t *testing.T, method, path string, body any, cookies []string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.Header.Add("Cookie", c)
	}
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)
	return w
}

// signup registers a user and returns the session cookies.
func (app *testApp) signup(t *testing.T, name, email string) []string {
	t.Helper()
	w := app.request(t, http.MethodPost, "/auth/register", gin.H{
		"name":     name,
		"email":    email,
		"password": "secret-pass",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return w.Result().Header["Set-Cookie"]
}

func (app *testApp) promoteToAdmin(t *testing.T, email string) {
	t.Helper()
	require.NoError(t, app.db.Model(&models.User{}).
		Where("email = ?", email).
		Update("role", models.RoleAdmin).Error)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Chipo", "chipo@example.com")

	w := app.request(t, http.MethodPost, "/auth/register", gin.H{
		"name":     "Other",
		"email":    "chipo@example.com",
		"password": "secret-pass",
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateAlertAssignsOwnerAndDefaults(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Chipo", "chipo@example.com")

	w := app.request(t, http.MethodPost, "/alerts", gin.H{
		"name":    "Help needed",
		"message": "Car accident on Great East Road",
		"lat":     -15.4,
		"lng":     28.3,
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var owner models.User
	require.NoError(t, app.db.Where("email = ?", "chipo@example.com").First(&owner).Error)

	var alert models.Alert
	require.NoError(t, app.db.First(&alert).Error)
	assert.Equal(t, owner.ID, alert.UserID)
	assert.Equal(t, models.AlertPending, alert.Status)
	require.NotNil(t, alert.InitiatedAt)
}

func TestCreateAlertRequiresCoordinates(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Chipo", "chipo@example.com")

	w := app.request(t, http.MethodPost, "/alerts", gin.H{
		"name":    "Help",
		"message": "no location",
	}, cookies)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var total int64
	app.db.Model(&models.Alert{}).Count(&total)
	assert.Zero(t, total)
}

func TestSendAlertReportsPartialFailure(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Chipo", "chipo@example.com")
	app.mailer.failFor["broken@example.com"] = true

	var owner models.User
	require.NoError(t, app.db.Where("email = ?", "chipo@example.com").First(&owner).Error)
	require.NoError(t, app.db.Create(&models.Contact{UserID: owner.ID, Name: "Good", Phone: "0977", Email: "good@example.com"}).Error)
	require.NoError(t, app.db.Create(&models.Contact{UserID: owner.ID, Name: "Broken", Phone: "0966", Email: "broken@example.com"}).Error)
	require.NoError(t, app.db.Create(&models.Contact{UserID: owner.ID, Name: "NoEmail", Phone: "0955"}).Error)

	lat, lng := -15.4, 28.3
	alert := models.Alert{UserID: owner.ID, Name: "Help", Status: models.AlertPending, Lat: &lat, Lng: &lng}
	require.NoError(t, app.db.Create(&alert).Error)

	w := app.request(t, http.MethodPost, fmt.Sprintf("/alerts/%d/send", alert.ID), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["sent"])
	assert.Len(t, body["failed"], 2)
	assert.Equal(t, []string{"good@example.com"}, app.mailer.sent)

	var refreshed models.Alert
	require.NoError(t, app.db.First(&refreshed, alert.ID).Error)
	assert.Equal(t, models.AlertSent, refreshed.Status)
}

func TestNonAdminRedirectedFromUserList(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Chipo", "chipo@example.com")

	w := app.request(t, http.MethodGet, "/users", nil, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestAdminCanListUsers(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Admin", "admin@example.com")
	app.promoteToAdmin(t, "admin@example.com")

	w := app.request(t, http.MethodGet, "/users", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["total"])
}

func TestIncidentListScopedToOwner(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Chipo", "chipo@example.com")
	otherCookies := app.signup(t, "Mwila", "mwila@example.com")

	w := app.request(t, http.MethodPost, "/incidents", gin.H{
		"name": "Robbery",
		"type": "crime",
		"area": "Kabwata",
		"lat":  -15.43,
		"lng":  28.31,
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = app.request(t, http.MethodGet, "/incidents", nil, otherCookies)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(0), body["total"])

	w = app.request(t, http.MethodGet, "/incidents", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, float64(1), body["total"])
}

func TestTokenAuthFlow(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Chipo", "chipo@example.com")

	w := app.request(t, http.MethodPost, "/api/auth/token/create", gin.H{
		"email":    "chipo@example.com",
		"password": "secret-pass",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	require.Equal(t, true, body["success"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/token/verify", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	app.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/token/verify", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	app.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenCreateWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Chipo", "chipo@example.com")

	w := app.request(t, http.MethodPost, "/api/auth/token/create", gin.H{
		"email":    "chipo@example.com",
		"password": "wrong-password",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
}

// bearer obtains an API token for an already registered user.
func (app *testApp) bearer(t *testing.T, email string) string {
	t.Helper()
	w := app.request(t, http.MethodPost, "/api/auth/token/create", gin.H{
		"email":    email,
		"password": "secret-pass",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHeatmapDensityCountsGroupedPoints(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Chipo", "chipo@example.com")

	var owner models.User
	require.NoError(t, app.db.Where("email = ?", "chipo@example.com").First(&owner).Error)

	// Forty alerts at one coordinate collapse into a single heat point.
	lat, lng := -15.4, 28.3
	for i := 0; i < 40; i++ {
		require.NoError(t, app.db.Create(&models.Alert{
			UserID: owner.ID, Name: "Help", Status: models.AlertPending, Lat: &lat, Lng: &lng,
		}).Error)
	}

	w := app.request(t, http.MethodGet, "/api/danger-zones/heatmap?time_range=24h&zoom=16", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Len(t, body["data"], 1)
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["total_points"])
	assert.Equal(t, float64(40), stats["alert_count"])
	assert.Equal(t, "low", stats["density_level"])
}

func TestDangerZoneStatsRankOldHotspots(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Chipo", "chipo@example.com")

	var owner models.User
	require.NoError(t, app.db.Where("email = ?", "chipo@example.com").First(&owner).Error)

	old := time.Now().AddDate(0, 0, -8)
	require.NoError(t, app.db.Create(&models.Incident{
		UserID: owner.ID, Name: "Flooding", Type: "natural_disaster",
		Lat: -15.42, Lng: 28.29, CreatedAt: old,
	}).Error)

	w := app.request(t, http.MethodGet, "/api/danger-zones/stats", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Len(t, body["hotspots"], 1)

	incidents := body["incidents"].(map[string]any)
	assert.Equal(t, float64(0), incidents["last_7d"])
	assert.Equal(t, float64(1), incidents["total"])
	alerts := body["alerts"].(map[string]any)
	assert.Equal(t, float64(0), alerts["total"])
}

func TestDeleteCenterByName(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "Chipo", "chipo@example.com")
	token := app.bearer(t, "chipo@example.com")

	var owner models.User
	require.NoError(t, app.db.Where("email = ?", "chipo@example.com").First(&owner).Error)
	require.NoError(t, app.db.Create(&models.Center{
		UserID: owner.ID, Name: "Kanyama Clinic", Type: "clinic", Status: "active",
	}).Error)

	req := httptest.NewRequest(http.MethodDelete, "/api/centers/byname/Kanyama%20Clinic", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	app.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var total int64
	app.db.Model(&models.Center{}).Count(&total)
	assert.Zero(t, total)

	req = httptest.NewRequest(http.MethodDelete, "/api/centers/byname/Missing", nil)
	req.Header.Set("Authorization", token)
	rec = httptest.NewRecorder()
	app.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHeatmapRejectsInvalidTimeRange(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Chipo", "chipo@example.com")

	w := app.request(t, http.MethodGet, "/api/danger-zones/heatmap?time_range=14d", nil, cookies)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestClustersRequireBoundsAndZoom(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Chipo", "chipo@example.com")

	w := app.request(t, http.MethodGet, "/api/danger-zones/clusters", nil, cookies)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func apkUpload(t *testing.T, app *testApp, cookies []string, name, filename string, size int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", name))
	fw, err := mw.CreateFormFile("apk_file", filename)
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte{0xAB}, size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-apk", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.Header.Add("Cookie", c)
	}
	w := httptest.NewRecorder()
	app.engine.ServeHTTP(w, req)
	return w
}

func TestUploadAPKRejectsBadExtension(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Admin", "admin@example.com")
	app.promoteToAdmin(t, "admin@example.com")

	w := apkUpload(t, app, cookies, "cress-app", "build.exe", 128)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var total int64
	app.db.Model(&models.File{}).Count(&total)
	assert.Zero(t, total)
}

func TestUploadAPKReplacesPreviousBuild(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Admin", "admin@example.com")
	app.promoteToAdmin(t, "admin@example.com")

	w := apkUpload(t, app, cookies, "cress-v1", "cress-v1.apk", 256)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = apkUpload(t, app, cookies, "cress-v2", "cress-v2.apk", 256)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var files []models.File
	require.NoError(t, app.db.Where("type = ?", models.OwnerAPK).Find(&files).Error)
	require.Len(t, files, 1)
	assert.Equal(t, "cress-v2", files[0].Name)

	// Download serves the surviving build without authentication.
	req := httptest.NewRequest(http.MethodGet, "/download-apk", nil)
	rec := httptest.NewRecorder()
	app.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var visitors int64
	app.db.Model(&models.Visitor{}).Count(&visitors)
	assert.Equal(t, int64(1), visitors)
}

func TestUploadAPKSameNameKeepsOneRow(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Admin", "admin@example.com")
	app.promoteToAdmin(t, "admin@example.com")

	// Re-uploading under the same name overwrites the stored object; the
	// superseded row must still be retired.
	w := apkUpload(t, app, cookies, "cress-app", "build-1.apk", 256)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = apkUpload(t, app, cookies, "cress-app", "build-2.apk", 512)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var files []models.File
	require.NoError(t, app.db.Where("type = ?", models.OwnerAPK).Find(&files).Error)
	require.Len(t, files, 1)
	assert.Equal(t, "apks/cress-app.apk", files[0].FilePath)
}

func TestUploadAPKRequiresAdmin(t *testing.T) {
	app := newTestApp(t)
	cookies := app.signup(t, "Chipo", "chipo@example.com")

	w := apkUpload(t, app, cookies, "cress-app", "cress.apk", 128)
	assert.Equal(t, http.StatusFound, w.Code)
}
