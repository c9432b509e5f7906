package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type stubTokens map[string]*models.JWTClaims

func (s stubTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type recordedRequest struct {
	method string
	path   string
	status int
}

type stubObserver struct {
	requests []recordedRequest
}

func (s *stubObserver) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	s.requests = append(s.requests, recordedRequest{method: method, path: path, status: status})
}

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := stubTokens{
		"admin":   {UserID: "u-admin", Role: models.RoleAdmin},
		"sched":   {UserID: "u-sched", Role: models.RoleScheduler},
		"student": {UserID: "u-student", Role: models.RoleStudent},
	}
	router := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(tokens)}, extra...)
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.POST("/lectures/:id", handlers...)
	return router
}

func serve(router http.Handler, authorization string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lectures/L1", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestJWTMiddleware(t *testing.T) {
	router := protectedRouter()

	cases := map[string]int{
		"":               http.StatusUnauthorized,
		"Basic abc":      http.StatusUnauthorized,
		"Bearer ":        http.StatusUnauthorized,
		"Bearer unknown": http.StatusUnauthorized,
		"Bearer student": http.StatusNoContent,
		"bearer admin":   http.StatusNoContent,
	}
	for header, want := range cases {
		if got := serve(router, header).Code; got != want {
			t.Fatalf("authorization %q: expected %d, got %d", header, want, got)
		}
	}
}

func TestRequireEditor(t *testing.T) {
	router := protectedRouter(RequireEditor())

	if got := serve(router, "Bearer sched").Code; got != http.StatusNoContent {
		t.Fatalf("scheduler should pass, got %d", got)
	}
	if got := serve(router, "Bearer admin").Code; got != http.StatusNoContent {
		t.Fatalf("admin should pass, got %d", got)
	}
	if got := serve(router, "Bearer student").Code; got != http.StatusForbidden {
		t.Fatalf("student should be forbidden, got %d", got)
	}
}

func TestRequireRoles(t *testing.T) {
	router := protectedRouter(RequireRoles(models.RoleAdmin))

	if got := serve(router, "Bearer admin").Code; got != http.StatusNoContent {
		t.Fatalf("admin should pass, got %d", got)
	}
	if got := serve(router, "Bearer sched").Code; got != http.StatusForbidden {
		t.Fatalf("scheduler should be forbidden, got %d", got)
	}

	gin.SetMode(gin.TestMode)
	bare := gin.New()
	bare.POST("/lectures/:id", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	if got := serve(bare, "").Code; got != http.StatusUnauthorized {
		t.Fatalf("missing claims should be unauthorized, got %d", got)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &stubObserver{}
	router := gin.New()
	router.Use(Metrics(obs))
	router.GET("/timetable/day", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/timetable/day", "/nope"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if len(obs.requests) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs.requests))
	}
	if obs.requests[0].path != "/timetable/day" || obs.requests[0].status != http.StatusOK {
		t.Fatalf("unexpected first observation: %+v", obs.requests[0])
	}
	if obs.requests[1].path != "unmatched" || obs.requests[1].status != http.StatusNotFound {
		t.Fatalf("unexpected second observation: %+v", obs.requests[1])
	}
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if meta := ExtractMeta(c); meta != nil {
		t.Fatalf("expected no metadata, got %v", meta)
	}
	SetMeta(c, "snapshot_taken_at", "2024-05-05T09:00:00Z")
	meta := ExtractMeta(c)
	if meta["snapshot_taken_at"] != "2024-05-05T09:00:00Z" {
		t.Fatalf("unexpected metadata: %v", meta)
	}
}

func TestAuditLogsSuccessfulChanges(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := protectedRouter(Audit(zap.New(core), "update", "lecture"))

	serve(router, "Bearer sched")
	serve(router, "Bearer unknown")

	entries := logs.FilterMessage("timetable changed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["actor_id"] != "u-sched" || fields["resource_id"] != "L1" || fields["action"] != "update" {
		t.Fatalf("unexpected audit fields: %v", fields)
	}
}
