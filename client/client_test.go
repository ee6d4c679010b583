package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/greencampus/facility-reports/internal/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "session-token"

func newStubServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.POST("/api/auth/login", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		if body["password"] != "Str0ng!pass" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Login successful!",
			"token":     testToken,
			"expiresAt": 1735689600,
			"user":      gin.H{"id": "u1", "username": body["identifier"], "role": "Class Teacher"},
		})
	})

	authed := router.Group("/api", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+testToken {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Invalid or expired token"})
		}
	})
	authed.POST("/waste/daily", func(c *gin.Context) {
		var form submission.WasteInput
		assert.NoError(t, c.ShouldBindJSON(&form))
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Waste entry submitted successfully",
			"entry":   gin.H{"_id": "w1", "photosCount": len(form.Photos)},
		})
	})
	authed.GET("/waste/daily", func(c *gin.Context) {
		assert.Equal(t, "5", c.Query("limit"))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"entries": []gin.H{{"_id": "w1", "classroomCleanliness": "Good"}},
			"count":   1,
		})
	})
	authed.POST("/user/profile-picture", func(c *gin.Context) {
		file, err := c.FormFile("profilePicture")
		if !assert.NoError(t, err) {
			return
		}
		f, _ := file.Open()
		raw, _ := io.ReadAll(f)
		c.JSON(http.StatusOK, gin.H{"success": true, "imageUrl": "http://cdn/" + file.Filename + "/" + string(raw)})
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestClient_LoginKeepsToken(t *testing.T) {
	server := newStubServer(t)
	c := New(server.URL + "/")
	ctx := context.Background()

	_, err := c.ListWaste(ctx, 5)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = c.Login(ctx, "kamal", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Empty(t, c.Token())

	session, err := c.Login(ctx, "kamal", "Str0ng!pass")
	require.NoError(t, err)
	assert.Equal(t, testToken, c.Token())
	assert.Equal(t, "kamal", session.User.Username)
	assert.Equal(t, int64(1735689600), session.ExpiresAt.Unix())
}

func TestClient_SubmitAndList(t *testing.T) {
	server := newStubServer(t)
	c := New(server.URL, WithToken(testToken))
	ctx := context.Background()

	submitted, err := c.SubmitWaste(ctx, submission.WasteInput{
		EntryDate: "2025-03-01",
		Photos:    []submission.PhotoInput{{Data: "a"}, {Data: "b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "w1", submitted.ID)
	assert.Equal(t, 2, submitted.PhotosCount)

	entries, err := c.ListWaste(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.EqualValues(t, "Good", entries[0].ClassroomCleanliness)
}

func TestClient_ExpiredTokenIsUnauthorized(t *testing.T) {
	server := newStubServer(t)
	c := New(server.URL, WithToken("stale"))

	_, err := c.ListWaste(context.Background(), 5)
	assert.True(t, IsUnauthorized(err))
}

func TestClient_UploadProfilePicture(t *testing.T) {
	server := newStubServer(t)
	c := New(server.URL, WithToken(testToken))

	url, err := c.UploadProfilePicture(context.Background(), "me.jpg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/me.jpg/jpeg", url)
}
