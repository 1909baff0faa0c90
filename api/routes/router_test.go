package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ABBA-DALHATU/football-network-app/internal/connections"
	"github.com/ABBA-DALHATU/football-network-app/internal/feed"
	"github.com/ABBA-DALHATU/football-network-app/internal/messaging"
	"github.com/ABBA-DALHATU/football-network-app/internal/notifications"
	"github.com/ABBA-DALHATU/football-network-app/internal/users"
	"github.com/ABBA-DALHATU/football-network-app/pkg/config"
	"github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
	"github.com/ABBA-DALHATU/football-network-app/pkg/identity"
	"github.com/ABBA-DALHATU/football-network-app/pkg/logger"
	"github.com/ABBA-DALHATU/football-network-app/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubUsersService struct {
	resolved *models.User
}

func (s *stubUsersService) ResolveOrCreate(ctx context.Context, ident identity.Identity) (*models.User, error) {
	if s.resolved != nil {
		return s.resolved, nil
	}
	return &models.User{ID: uuid.New(), ExternalID: ident.Subject, Role: enums.RoleNone}, nil
}

func (s *stubUsersService) GetByID(ctx context.Context, id uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: id, FullName: "Stub User"}, nil
}

func (s *stubUsersService) UpdateProfile(ctx context.Context, callerID uuid.UUID, dto users.UpdateProfileDTO) (*users.UserDTO, error) {
	return &users.UserDTO{ID: callerID}, nil
}

func (s *stubUsersService) SetRole(ctx context.Context, callerID uuid.UUID, dto users.SetRoleDTO) (*users.UserDTO, error) {
	return &users.UserDTO{ID: callerID}, nil
}

func (s *stubUsersService) Search(ctx context.Context, callerID uuid.UUID, query string) ([]users.UserDTO, error) {
	return []users.UserDTO{}, nil
}

type stubConnectionsService struct{}

func (stubConnectionsService) SendRequest(context.Context, uuid.UUID, uuid.UUID) (*connections.ConnectionDTO, error) {
	return &connections.ConnectionDTO{}, nil
}

func (stubConnectionsService) Respond(context.Context, uuid.UUID, uuid.UUID, bool) (*connections.ConnectionDTO, error) {
	return &connections.ConnectionDTO{}, nil
}

func (stubConnectionsService) Cancel(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubConnectionsService) Remove(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubConnectionsService) List(context.Context, uuid.UUID) ([]connections.ConnectionWithUserDTO, error) {
	return []connections.ConnectionWithUserDTO{}, nil
}

func (stubConnectionsService) Requests(context.Context, uuid.UUID, connections.RequestDirection) ([]connections.ConnectionWithUserDTO, error) {
	return []connections.ConnectionWithUserDTO{}, nil
}

func (stubConnectionsService) MutualCount(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return 0, nil
}

type stubFeedService struct{}

func (stubFeedService) FetchPosts(context.Context, uuid.UUID, enums.FeedType, pagination.Page) (*feed.PageDTO, error) {
	return &feed.PageDTO{Items: []feed.PostDTO{}}, nil
}

func (stubFeedService) CreatePost(context.Context, uuid.UUID, feed.CreatePostDTO) (*feed.PostDTO, error) {
	return &feed.PostDTO{}, nil
}

func (stubFeedService) ToggleLike(context.Context, uuid.UUID, uuid.UUID) (*feed.LikeResultDTO, error) {
	return &feed.LikeResultDTO{}, nil
}

func (stubFeedService) AddComment(context.Context, uuid.UUID, uuid.UUID, feed.AddCommentDTO) (*feed.CommentDTO, error) {
	return &feed.CommentDTO{}, nil
}

type stubMessagingService struct{}

func (stubMessagingService) SendMessage(context.Context, uuid.UUID, uuid.UUID, string) (*messaging.MessageDTO, error) {
	return &messaging.MessageDTO{}, nil
}

func (stubMessagingService) GetMessages(context.Context, uuid.UUID, uuid.UUID) ([]messaging.MessageDTO, error) {
	return []messaging.MessageDTO{}, nil
}

func (stubMessagingService) GetConversations(context.Context, uuid.UUID) ([]messaging.ConversationDTO, error) {
	return []messaging.ConversationDTO{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) Emit(context.Context, notifications.Event) {}

func (stubNotificationsService) List(context.Context, notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubNotificationsService) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) UnreadCount(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "football-network",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(
		testRouterConfig(),
		logg,
		nil,
		stubPinger{},
		nil,
		&stubUsersService{},
		stubConnectionsService{},
		stubFeedService{},
		stubMessagingService{},
		stubNotificationsService{},
	)
}

func mintRouterToken(t *testing.T) string {
	t.Helper()
	token, err := identity.MintAccessToken(testRouterConfig().JWT, time.Now(), identity.Identity{
		Subject:  "ext-user-1",
		FullName: "Router Tester",
		Email:    "router@example.com",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterPublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready", "/api/public/ping"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: unexpected status %d", path, resp.Code)
		}
	}
}

func TestRouterProtectedEndpointsRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/session"},
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodGet, "/api/v1/connections"},
		{http.MethodGet, "/api/v1/connections/requests"},
		{http.MethodGet, "/api/v1/posts"},
		{http.MethodGet, "/api/v1/messages"},
		{http.MethodGet, "/api/v1/notifications"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestRouterAuthedRequestReachesHandler(t *testing.T) {
	router := newTestRouter(t)
	token := mintRouterToken(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.FullName != "Stub User" {
		t.Fatalf("unexpected body %+v", envelope.Data)
	}
}

func TestRouterPrivatePingCarriesUserID(t *testing.T) {
	router := newTestRouter(t)
	token := mintRouterToken(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["user_id"] == "" {
		t.Fatal("expected user_id in private ping payload")
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	req.Header.Set("Authorization", "Bearer "+mintRouterToken(t))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
