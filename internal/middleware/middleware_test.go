package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thermotrack/internal/config"
	"thermotrack/internal/models"
	"thermotrack/internal/repository"
	"thermotrack/internal/service"
	"thermotrack/internal/testutil"
	"thermotrack/pkg/logger"
	"thermotrack/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitJWT("test-access", "test-refresh", 15*time.Minute, time.Hour)
}

func bearer(t *testing.T, userID uint, role models.Role) string {
	t.Helper()
	token, err := utils.GenerateAccessToken(userID, string(role))
	require.NoError(t, err)
	return "Bearer " + token
}

func utoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func serve(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "role": actor.Role})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "Missing", header: "", status: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "Garbage", header: "Bearer not-a-jwt", status: http.StatusUnauthorized},
		{name: "Valid", header: bearer(t, 7, models.RoleTechnician), status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := serve(r, http.MethodGet, "/me", headers)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"user_id":7,"role":"technician"}`, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthMiddleware(), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/staff", AuthMiddleware(), RequireRole(models.RoleAdmin, models.RoleTechnician), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/admin", map[string]string{"Authorization": bearer(t, 1, models.RoleTechnician)}).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin", map[string]string{"Authorization": bearer(t, 1, models.RoleAdmin)}).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/staff", map[string]string{"Authorization": bearer(t, 1, models.RoleTechnician)}).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/staff", map[string]string{"Authorization": bearer(t, 1, models.RoleViewer)}).Code)
}

func TestRequireElevated(t *testing.T) {
	access := service.NewAccessService(nil, []string{"admin", "technician"})

	r := gin.New()
	r.GET("/feed", AuthMiddleware(), RequireElevated(access), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/feed", map[string]string{"Authorization": bearer(t, 1, models.RoleTechnician)}).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/feed", map[string]string{"Authorization": bearer(t, 1, models.RoleUser)}).Code)
}

func TestCheckRoomAccess(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repository.New(db)
	access := service.NewAccessService(repos, []string{"admin", "technician"})

	owner := testutil.CreateUser(t, db, "owner", models.RoleUser)
	stranger := testutil.CreateUser(t, db, "stranger", models.RoleUser)
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)
	room := testutil.CreateRoom(t, db, &owner.ID, "Lab")

	r := gin.New()
	r.GET("/rooms/:room_id", AuthMiddleware(), NewAccessControlMiddleware(access).CheckRoomAccess(), func(c *gin.Context) {
		got, ok := RoomFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"name": got.Name})
	})

	roomPath := "/rooms/" + utoa(room.ID)

	w := serve(r, http.MethodGet, roomPath, map[string]string{"Authorization": bearer(t, owner.ID, owner.Role)})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Lab"}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, roomPath, map[string]string{"Authorization": bearer(t, stranger.ID, stranger.Role)}).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/rooms/999", map[string]string{"Authorization": bearer(t, stranger.ID, stranger.Role)}).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/rooms/999", map[string]string{"Authorization": bearer(t, admin.ID, admin.Role)}).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/rooms/abc", map[string]string{"Authorization": bearer(t, admin.ID, admin.Role)}).Code)
}

func TestAPIKeyAuthMiddleware(t *testing.T) {
	db := testutil.NewDB(t)
	repos := repository.New(db)
	access := service.NewAccessService(repos, []string{"admin"})
	keys := service.NewDeviceAPIKeyService(repos, access)

	owner := testutil.CreateUser(t, db, "owner", models.RoleUser)
	room := testutil.CreateRoom(t, db, &owner.ID, "Lab")
	other := testutil.CreateRoom(t, db, &owner.ID, "Office")

	created, err := keys.GenerateAPIKey(context.Background(), service.Actor{UserID: owner.ID, Role: owner.Role}, room.ID, service.APIKeyInput{})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/ingest/rooms/:room_id/readings", APIKeyAuthMiddleware(keys), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"room_id": c.MustGet(ContextAPIKeyRoomID)})
	})

	path := func(id uint) string { return "/ingest/rooms/" + utoa(id) + "/readings" }

	w := serve(r, http.MethodPost, path(room.ID), map[string]string{"X-API-Key": created.APIKey})
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, path(room.ID), nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, path(room.ID), map[string]string{"X-API-Key": "wrong"}).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, path(other.ID), map[string]string{"X-API-Key": created.APIKey}).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/ingest/rooms/x/readings", map[string]string{"X-API-Key": created.APIKey}).Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = serve(r, http.MethodGet, "/ping", map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/ping", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logger.Discard()), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": "abc"})
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}
