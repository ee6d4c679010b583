package core

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/cache"
	"github.com/greencampus/facility-reports/config"
	"github.com/greencampus/facility-reports/database/dbtest"
	"github.com/greencampus/facility-reports/database/models"
	"github.com/greencampus/facility-reports/internal/app"
	"github.com/greencampus/facility-reports/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "Str0ng!pass"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ServerHost:          "127.0.0.1",
		ServerPort:          5000,
		CORSAllowedOrigins:  "http://localhost:3000",
		CacheDashboardTTL:   time.Second,
		JWTSecret:           strings.Repeat("k", 32),
		JWTExpiresIn:        time.Hour,
		RateLimitApiRPS:     1000,
		RateLimitApiBurst:   1000,
		RateLimitPhotoRPS:   1000,
		RateLimitPhotoBurst: 1000,
		RateLimitAuthRPS:    1000,
		RateLimitAuthBurst:  1000,
		RateLimitExpireTime: time.Minute,
		MaxConcurrency:      50,
		UploadMaxBodyMB:     20,
		PhotoMaxSizeMB:      5,
		PhotoMaxDimension:   800,
		PhotoJPEGQuality:    80,
	}

	container := app.NewContainer(cfg)
	container.UseDB(dbtest.Open(t))

	cacheProvider, err := cache.New(cache.Config{Type: "memory"})
	require.NoError(t, err)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, container.InitServicesWith(cacheProvider, store))

	router, cleanup := SetupRouter(container)
	t.Cleanup(cleanup)
	t.Cleanup(func() { _ = cacheProvider.Close() })
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var out map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func signupAndLogin(t *testing.T, router *gin.Engine, username string, role models.Role) string {
	t.Helper()

	w, _ := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": username,
		"email":    username + "@school.lk",
		"password": testPassword,
		"fullName": "Test " + username,
		"role":     role,
		"section":  "Primary",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": username,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func pngDataURL(t *testing.T, shade uint8) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: shade, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func wasteForm(t *testing.T, rating int) gin.H {
	return gin.H{
		"entryDate":         "2025-03-01",
		"classSection":      "Grade 5A",
		"totalWaste":        3.5,
		"separationStatus":  "properly_separated",
		"cleanlinessRating": rating,
		"photos": []gin.H{
			{"data": pngDataURL(t, 10), "originalName": "bin.png"},
			{"data": pngDataURL(t, 200), "originalName": "room.png"},
		},
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "Server is running", body["message"])
}

func TestRecovery_RespondsWithErrorEnvelope(t *testing.T) {
	router := newTestRouter(t)
	router.GET("/api/explode", func(c *gin.Context) { panic("boom") })

	w, body := doJSON(t, router, http.MethodGet, "/api/explode", "", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Server error", body["message"])
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestSignupAndLogin(t *testing.T) {
	router := newTestRouter(t)
	signupAndLogin(t, router, "kamal", models.RoleClassTeacher)

	t.Run("duplicate username", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
			"username": "kamal",
			"email":    "another@school.lk",
			"password": testPassword,
			"fullName": "Someone Else",
			"role":     models.RoleWorker,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Username or email already exists", body["message"])
	})

	t.Run("login by email", func(t *testing.T) {
		w, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"identifier": "kamal@school.lk",
			"password":   testPassword,
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Login successful!", body["message"])
		user := body["user"].(map[string]interface{})
		assert.Equal(t, "kamal", user["username"])
		assert.Equal(t, string(models.RoleClassTeacher), user["role"])
	})

	t.Run("unknown user and wrong password look the same", func(t *testing.T) {
		w1, b1 := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{"username": "ghost", "password": testPassword})
		w2, b2 := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{"username": "kamal", "password": "Wr0ng!pass"})
		assert.Equal(t, http.StatusBadRequest, w1.Code)
		assert.Equal(t, w1.Code, w2.Code)
		assert.Equal(t, b1["message"], b2["message"])
	})
}

func TestProtectedRoutes_TokenChecks(t *testing.T) {
	router := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/user/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Access token required", body["message"])

	w, body = doJSON(t, router, http.MethodGet, "/api/user/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid or expired token", body["message"])

	token := signupAndLogin(t, router, "nimal", models.RoleNonAcademicStaff)
	w, body = doJSON(t, router, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "nimal", user["username"])
	assert.NotContains(t, user, "password")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestWasteSubmission(t *testing.T) {
	router := newTestRouter(t)

	t.Run("worker is refused before anything is stored", func(t *testing.T) {
		token := signupAndLogin(t, router, "sunil", models.RoleWorker)
		w, body := doJSON(t, router, http.MethodPost, "/api/waste/daily", token, wasteForm(t, 5))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Worker users are not allowed to submit waste entries", body["message"])

		w, body = doJSON(t, router, http.MethodGet, "/api/waste/daily", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 0, body["count"])
	})

	t.Run("class teacher submits and reads back", func(t *testing.T) {
		token := signupAndLogin(t, router, "kamal", models.RoleClassTeacher)
		w, body := doJSON(t, router, http.MethodPost, "/api/waste/daily", token, wasteForm(t, 5))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "Waste entry submitted successfully", body["message"])
		entry := body["entry"].(map[string]interface{})
		assert.Equal(t, "Excellent", entry["cleanliness"])
		assert.EqualValues(t, 2, entry["photosCount"])

		w, body = doJSON(t, router, http.MethodGet, "/api/waste/daily", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 1, body["count"])

		entries := body["entries"].([]interface{})
		stored := entries[0].(map[string]interface{})
		assert.Equal(t, "Primary", stored["submittedSection"])
		photos := stored["photos"].([]interface{})
		require.Len(t, photos, 2)
		first := photos[0].(map[string]interface{})
		assert.NotContains(t, first, "data")

		req := httptest.NewRequest(http.MethodGet, "/photos/"+first["publicId"].(string), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	})

	t.Run("missing photos fail validation", func(t *testing.T) {
		token := signupAndLogin(t, router, "amara", models.RoleClassTeacher)
		form := wasteForm(t, 3)
		form["photos"] = []gin.H{{"data": pngDataURL(t, 1)}}
		w, body := doJSON(t, router, http.MethodPost, "/api/waste/daily", token, form)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "At least 2 photos are required", body["message"])
	})
}

func TestDashboard_ManagementOnly(t *testing.T) {
	router := newTestRouter(t)
	teacher := signupAndLogin(t, router, "kamal", models.RoleClassTeacher)
	principal := signupAndLogin(t, router, "silva", models.RolePrincipal)

	w, body := doJSON(t, router, http.MethodGet, "/api/dashboard/stats", teacher, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access denied", body["message"])

	w, body = doJSON(t, router, http.MethodGet, "/api/dashboard/stats", principal, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := body["stats"].(map[string]interface{})
	assert.EqualValues(t, 2, stats["totalUsers"])
	assert.Contains(t, body, "recentEntries")
	assert.Contains(t, body, "trend")

	signupAndLogin(t, router, "nimal", models.RoleWorker)
	w, body = doJSON(t, router, http.MethodGet, "/api/dashboard/stats", principal, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats = body["stats"].(map[string]interface{})
	assert.EqualValues(t, 3, stats["totalUsers"], "signup drops the cached aggregate")
}

func TestMapMarkers(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "silva", models.RolePrincipal)

	w, body := doJSON(t, router, http.MethodGet, "/api/map/markers", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["markers"])
	assert.Contains(t, body, "counts")
}

func TestPhotoRoute_RejectsTraversal(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/photos/../config.env", "/photos/photos/missing.jpg"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}
