package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ABBA-DALHATU/football-network-app/api/responses"
	"github.com/ABBA-DALHATU/football-network-app/api/validators"
	"github.com/ABBA-DALHATU/football-network-app/internal/connections"
	pkgerrors "github.com/ABBA-DALHATU/football-network-app/pkg/errors"
	"github.com/ABBA-DALHATU/football-network-app/pkg/logger"
)

// SendConnectionRequest creates a pending request towards another user.
func SendConnectionRequest(svc connections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "connections service unavailable"))
			return
		}

		callerID, err := callerFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload connections.SendRequestDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		receiverID, err := uuid.Parse(payload.ReceiverID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid receiver id"))
			return
		}

		conn, err := svc.SendRequest(ctx, callerID, receiverID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, conn)
	}
}

// ListConnections returns the caller's accepted connections with profiles
// and mutual counts.
func ListConnections(svc connections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "connections service unavailable"))
			return
		}

		callerID, err := callerFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.List(ctx, callerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// ListConnectionRequests returns pending requests for the caller. The
// direction query parameter selects incoming (default) or outgoing.
func ListConnectionRequests(svc connections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "connections service unavailable"))
			return
		}

		callerID, err := callerFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		direction := connections.DirectionIncoming
		if raw := strings.TrimSpace(r.URL.Query().Get("direction")); raw != "" {
			direction = connections.RequestDirection(raw)
		}

		items, err := svc.Requests(ctx, callerID, direction)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// RespondToConnectionRequest accepts or rejects a pending request. Only the
// receiver may respond.
func RespondToConnectionRequest(svc connections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "connections service unavailable"))
			return
		}

		callerID, err := callerFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload connections.RespondDTO
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		conn, err := svc.Respond(ctx, callerID, requestID, payload.Action == "ACCEPT")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, conn)
	}
}

// CancelConnectionRequest withdraws a pending request the caller sent.
func CancelConnectionRequest(svc connections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "connections service unavailable"))
			return
		}

		callerID, err := callerFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Cancel(ctx, callerID, requestID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// RemoveConnection severs an accepted connection from either side.
func RemoveConnection(svc connections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "connections service unavailable"))
			return
		}

		callerID, err := callerFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		connectionID, err := pathUUID(r, "connectionID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Remove(ctx, callerID, connectionID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// MutualConnectionCount returns how many accepted connections the caller
// shares with another user.
func MutualConnectionCount(svc connections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "connections service unavailable"))
			return
		}

		callerID, err := callerFromContext(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		otherID, err := pathUUID(r, "userID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		count, err := svc.MutualCount(ctx, callerID, otherID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"mutual_count": count})
	}
}
