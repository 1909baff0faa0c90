package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ABBA-DALHATU/football-network-app/internal/connections"
)

type testConnectionsService struct {
	sendRequestFn func(ctx context.Context, callerID, receiverID uuid.UUID) (*connections.ConnectionDTO, error)
	respondFn     func(ctx context.Context, callerID, requestID uuid.UUID, accept bool) (*connections.ConnectionDTO, error)
	cancelFn      func(ctx context.Context, callerID, requestID uuid.UUID) error
	removeFn      func(ctx context.Context, callerID, connectionID uuid.UUID) error
	listFn        func(ctx context.Context, callerID uuid.UUID) ([]connections.ConnectionWithUserDTO, error)
	requestsFn    func(ctx context.Context, callerID uuid.UUID, direction connections.RequestDirection) ([]connections.ConnectionWithUserDTO, error)
	mutualCountFn func(ctx context.Context, callerID, otherID uuid.UUID) (int64, error)
}

func (s *testConnectionsService) SendRequest(ctx context.Context, callerID, receiverID uuid.UUID) (*connections.ConnectionDTO, error) {
	if s.sendRequestFn != nil {
		return s.sendRequestFn(ctx, callerID, receiverID)
	}
	return &connections.ConnectionDTO{}, nil
}

func (s *testConnectionsService) Respond(ctx context.Context, callerID, requestID uuid.UUID, accept bool) (*connections.ConnectionDTO, error) {
	if s.respondFn != nil {
		return s.respondFn(ctx, callerID, requestID, accept)
	}
	return &connections.ConnectionDTO{}, nil
}

func (s *testConnectionsService) Cancel(ctx context.Context, callerID, requestID uuid.UUID) error {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, callerID, requestID)
	}
	return nil
}

func (s *testConnectionsService) Remove(ctx context.Context, callerID, connectionID uuid.UUID) error {
	if s.removeFn != nil {
		return s.removeFn(ctx, callerID, connectionID)
	}
	return nil
}

func (s *testConnectionsService) List(ctx context.Context, callerID uuid.UUID) ([]connections.ConnectionWithUserDTO, error) {
	if s.listFn != nil {
		return s.listFn(ctx, callerID)
	}
	return []connections.ConnectionWithUserDTO{}, nil
}

func (s *testConnectionsService) Requests(ctx context.Context, callerID uuid.UUID, direction connections.RequestDirection) ([]connections.ConnectionWithUserDTO, error) {
	if s.requestsFn != nil {
		return s.requestsFn(ctx, callerID, direction)
	}
	return []connections.ConnectionWithUserDTO{}, nil
}

func (s *testConnectionsService) MutualCount(ctx context.Context, callerID, otherID uuid.UUID) (int64, error) {
	if s.mutualCountFn != nil {
		return s.mutualCountFn(ctx, callerID, otherID)
	}
	return 0, nil
}

func TestSendConnectionRequestSuccess(t *testing.T) {
	callerID := uuid.New()
	receiverID := uuid.New()
	svc := &testConnectionsService{
		sendRequestFn: func(ctx context.Context, cid, rid uuid.UUID) (*connections.ConnectionDTO, error) {
			if cid != callerID || rid != receiverID {
				t.Fatalf("unexpected pair %s -> %s", cid, rid)
			}
			return &connections.ConnectionDTO{ID: uuid.New(), SenderID: cid, ReceiverID: rid}, nil
		},
	}

	body := strings.NewReader(`{"receiver_id":"` + receiverID.String() + `"}`)
	req := authedRequest(http.MethodPost, "/api/v1/connections/requests", callerID.String(), body)
	resp := httptest.NewRecorder()
	SendConnectionRequest(svc, testLogger())(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSendConnectionRequestValidatesBody(t *testing.T) {
	body := strings.NewReader(`{"receiver_id":"not-a-uuid"}`)
	req := authedRequest(http.MethodPost, "/api/v1/connections/requests", uuid.NewString(), body)
	resp := httptest.NewRecorder()
	SendConnectionRequest(&testConnectionsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRespondToConnectionRequestAccept(t *testing.T) {
	requestID := uuid.New()
	var sawAccept bool
	svc := &testConnectionsService{
		respondFn: func(ctx context.Context, callerID, rid uuid.UUID, accept bool) (*connections.ConnectionDTO, error) {
			if rid != requestID {
				t.Fatalf("unexpected request %s", rid)
			}
			sawAccept = accept
			return &connections.ConnectionDTO{ID: rid}, nil
		},
	}

	body := strings.NewReader(`{"action":"ACCEPT"}`)
	req := authedRequest(http.MethodPost, "/api/v1/connections/requests/"+requestID.String()+"/respond", uuid.NewString(), body)
	req = addRouteParam(req, "requestID", requestID.String())
	resp := httptest.NewRecorder()
	RespondToConnectionRequest(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !sawAccept {
		t.Fatal("expected accept to reach the service")
	}
}

func TestRespondToConnectionRequestRejectsBadAction(t *testing.T) {
	body := strings.NewReader(`{"action":"MAYBE"}`)
	req := authedRequest(http.MethodPost, "/api/v1/connections/requests/"+uuid.NewString()+"/respond", uuid.NewString(), body)
	req = addRouteParam(req, "requestID", uuid.NewString())
	resp := httptest.NewRecorder()
	RespondToConnectionRequest(&testConnectionsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListConnectionRequestsDefaultsToIncoming(t *testing.T) {
	var seen connections.RequestDirection
	svc := &testConnectionsService{
		requestsFn: func(ctx context.Context, callerID uuid.UUID, direction connections.RequestDirection) ([]connections.ConnectionWithUserDTO, error) {
			seen = direction
			return []connections.ConnectionWithUserDTO{}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/connections/requests", uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	ListConnectionRequests(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if seen != connections.DirectionIncoming {
		t.Fatalf("unexpected direction %q", seen)
	}
}

func TestListConnectionRequestsOutgoing(t *testing.T) {
	var seen connections.RequestDirection
	svc := &testConnectionsService{
		requestsFn: func(ctx context.Context, callerID uuid.UUID, direction connections.RequestDirection) ([]connections.ConnectionWithUserDTO, error) {
			seen = direction
			return []connections.ConnectionWithUserDTO{}, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/connections/requests?direction=outgoing", uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	ListConnectionRequests(svc, testLogger())(resp, req)
	if seen != connections.DirectionOutgoing {
		t.Fatalf("unexpected direction %q", seen)
	}
}

func TestRemoveConnection(t *testing.T) {
	connectionID := uuid.New()
	called := false
	svc := &testConnectionsService{
		removeFn: func(ctx context.Context, callerID, cid uuid.UUID) error {
			called = true
			if cid != connectionID {
				t.Fatalf("unexpected connection %s", cid)
			}
			return nil
		},
	}

	req := authedRequest(http.MethodDelete, "/api/v1/connections/"+connectionID.String(), uuid.NewString(), nil)
	req = addRouteParam(req, "connectionID", connectionID.String())
	resp := httptest.NewRecorder()
	RemoveConnection(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestMutualConnectionCount(t *testing.T) {
	otherID := uuid.New()
	svc := &testConnectionsService{
		mutualCountFn: func(ctx context.Context, callerID, oid uuid.UUID) (int64, error) {
			if oid != otherID {
				t.Fatalf("unexpected other %s", oid)
			}
			return 3, nil
		},
	}

	req := authedRequest(http.MethodGet, "/api/v1/connections/mutual/"+otherID.String(), uuid.NewString(), nil)
	req = addRouteParam(req, "userID", otherID.String())
	resp := httptest.NewRecorder()
	MutualConnectionCount(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["mutual_count"] != 3 {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}
