package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mindcare-go/internal/middleware"
	"mindcare-go/internal/model"
	"mindcare-go/internal/repository/memory"
	"mindcare-go/internal/service"
	"mindcare-go/pkg/token"
)

type fakePlanSearcher struct {
	topic, query string
	size         int
}

func (f *fakePlanSearcher) SearchPlans(_ context.Context, topic, query string, size int) ([]model.PlanSearchResult, error) {
	f.topic, f.query, f.size = topic, query, size
	return []model.PlanSearchResult{{PlanDocument: model.PlanDocument{DocumentID: "2-1", Topic: topic}, Score: 1.5}}, nil
}

func TestAdminHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	users := memory.NewUserStore()
	require.NoError(t, users.Create(&model.User{Username: "root", Role: "ADMIN"}))
	require.NoError(t, users.Create(&model.User{Username: "eve"}))
	convs := memory.NewConversationStore()
	jwt := token.NewJWTManager("test-secret", 1, 1)
	userService := service.NewUserService(users, jwt)
	searcher := &fakePlanSearcher{}

	h := NewAdminHandler(
		service.NewAdminService(users, memory.NewProgressStore(), convs),
		service.NewPlanSearchService(searcher),
	)
	r := gin.New()
	admin := r.Group("/admin", middleware.AuthMiddleware(jwt, userService), middleware.AdminAuthMiddleware())
	admin.GET("/users/list", h.ListUsers)
	admin.GET("/conversation", h.GetAllConversations)
	admin.GET("/plans/search", h.SearchPlans)

	get := func(path, username, role string) *httptest.ResponseRecorder {
		tok, err := jwt.GenerateToken(token.Identity{Username: username, Role: role})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusForbidden, get("/admin/users/list", "eve", "USER").Code)

	w := get("/admin/users/list?page=1&size=1", "root", "ADMIN")
	require.Equal(t, http.StatusOK, w.Code)
	var list service.UserListResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	assert.EqualValues(t, 2, list.TotalElements)
	assert.Equal(t, 2, list.TotalPages)
	require.Len(t, list.Content, 1)
	assert.Equal(t, "root", list.Content[0].Username)

	w = get("/admin/plans/search?topic=Stress&q=yoga&size=5", "root", "ADMIN")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stress", searcher.topic)
	assert.Equal(t, "yoga", searcher.query)
	assert.Equal(t, 5, searcher.size)

	assert.Equal(t, http.StatusBadRequest, get("/admin/conversation?userid=abc", "root", "ADMIN").Code)
	assert.Equal(t, http.StatusBadRequest, get("/admin/conversation?start_date=2024/01/01", "root", "ADMIN").Code)
	assert.Equal(t, http.StatusOK, get("/admin/conversation?start_date=2024-01-01&end_date=2024-01-31", "root", "ADMIN").Code)
}
