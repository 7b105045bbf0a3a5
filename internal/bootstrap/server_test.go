package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/classbooking/config"
	studioapi "github.com/Domenick1991/classbooking/internal/api/studio_service_api"
	"github.com/Domenick1991/classbooking/internal/auth"
	"github.com/Domenick1991/classbooking/internal/domain"
	"github.com/Domenick1991/classbooking/internal/repository/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

const testSecret = "test-secret"

type studio struct {
	router   *gin.Engine
	verifier *auth.Verifier
	classID  string
	start    time.Time
}

func newStudio(t *testing.T) *studio {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Storage.Driver = "memory"
	cfg.Auth.JWTSecret = testSecret

	store := memory.NewStore()
	ctx := context.Background()

	london := cfg.HomeLocation()
	start := time.Now().In(london).Add(72 * time.Hour).Truncate(time.Hour)
	class := &domain.ClassInstance{
		ID:         domain.ClassID("tpl", start),
		TemplateID: "tpl",
		Title:      "Spin",
		Timezone:   "Europe/London",
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Capacity:   1,
		Status:     domain.ClassStatusScheduled,
		CreatedAt:  time.Now(),
	}
	created, err := store.Classes().CreateIfAbsent(ctx, class)
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, store.Profiles().Upsert(ctx, &domain.Profile{ID: "coach", Name: "Coach", Role: domain.RoleStaff}))

	deps := Deps{
		Store:     store,
		Templates: store.Templates(),
		Classes:   store.Classes(),
		Bookings:  store.Bookings(),
		Profiles:  store.Profiles(),
	}
	verifier := auth.NewVerifier(testSecret, "")
	return &studio{
		router:   NewRouter(cfg, verifier, NewServices(cfg, deps)),
		verifier: verifier,
		classID:  class.ID,
		start:    start,
	}
}

func (s *studio) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := s.verifier.IssueToken(userID, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *studio) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
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
	s.router.ServeHTTP(w, req)
	return w
}

func reasonOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Reason string `json:"reason"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Reason
}

func TestRouter_HealthAndDocs(t *testing.T) {
	s := newStudio(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/swagger/studio.swagger.json", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, json.Valid(w.Body.Bytes()))
	assert.Contains(t, w.Body.String(), "/bookClass")
}

func TestRouter_RejectsMissingAndBadTokens(t *testing.T) {
	s := newStudio(t)

	w := s.do(t, http.MethodPost, "/api/bookClass", "", map[string]string{"classId": s.classID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", reasonOf(t, w))

	w = s.do(t, http.MethodPost, "/api/bookClass", "not-a-jwt", map[string]string{"classId": s.classID})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_BookingLifecycle(t *testing.T) {
	s := newStudio(t)
	alice, bob, coach := s.token(t, "alice"), s.token(t, "bob"), s.token(t, "coach")

	w := s.do(t, http.MethodPost, "/api/bookClass", alice, map[string]string{"classId": s.classID, "userName": "Alice"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var booked struct {
		Success   bool   `json:"success"`
		BookingID string `json:"bookingId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booked))
	assert.True(t, booked.Success)
	assert.Equal(t, domain.BookingID(s.classID, "alice"), booked.BookingID)

	w = s.do(t, http.MethodPost, "/api/bookClass", bob, map[string]string{"classId": s.classID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CLASS_FULL", reasonOf(t, w))

	w = s.do(t, http.MethodGet, "/api/schedule?week="+s.start.Format(time.DateOnly), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var week struct {
		Classes []struct {
			ID          string `json:"id"`
			BookedCount int    `json:"booked_count"`
			SeatsLeft   int    `json:"seats_left"`
		} `json:"classes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &week))
	require.Len(t, week.Classes, 1)
	assert.Equal(t, s.classID, week.Classes[0].ID)
	assert.Equal(t, 1, week.Classes[0].BookedCount)
	assert.Equal(t, 0, week.Classes[0].SeatsLeft)

	w = s.do(t, http.MethodPost, "/api/getClassRoster", alice, map[string]string{"classId": s.classID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/checkInBooking", coach, map[string]any{"classId": s.classID, "userId": "alice", "attended": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/getClassRoster", coach, map[string]string{"classId": s.classID})
	require.Equal(t, http.StatusOK, w.Code)
	var roster struct {
		Total          int `json:"total"`
		CheckedInCount int `json:"checkedInCount"`
		Attendees      []struct {
			UserID   string `json:"userId"`
			UserName string `json:"userName"`
			Attended bool   `json:"attended"`
		} `json:"attendees"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &roster))
	assert.Equal(t, 1, roster.Total)
	assert.Equal(t, 1, roster.CheckedInCount)
	require.Len(t, roster.Attendees, 1)
	assert.Equal(t, "Alice", roster.Attendees[0].UserName)
	assert.True(t, roster.Attendees[0].Attended)

	w = s.do(t, http.MethodPost, "/api/cancelBooking", alice, map[string]string{"classId": s.classID})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/bookClass", bob, map[string]string{"classId": s.classID})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/me/bookings", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []domain.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, s.classID, mine[0].ClassID)
}

func TestRouter_TemplatesAreStaffOnly(t *testing.T) {
	s := newStudio(t)

	w := s.do(t, http.MethodGet, "/api/templates", s.token(t, "alice"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/templates", s.token(t, "coach"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGRPCServer_Health(t *testing.T) {
	store := memory.NewStore()
	cfg := config.Default()
	deps := Deps{
		Store:     store,
		Templates: store.Templates(),
		Classes:   store.Classes(),
		Bookings:  store.Bookings(),
		Profiles:  store.Profiles(),
	}
	srv, _ := NewGRPCServer(auth.NewVerifier(testSecret, ""), NewServices(cfg, deps))

	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: studioapi.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
