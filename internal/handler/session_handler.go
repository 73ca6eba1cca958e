/*
Package handler provides HTTP handler functions for the session surface: the
local user's lobby, pending ephemeral signals, and navigation updates.
*/
package handler

import (
	"net/http"

	"lobbysync/internal/pkg/errs"
	"lobbysync/internal/pkg/req"
	"lobbysync/internal/pkg/resp"
)

// HandleGetSession returns the local user's session view: their created
// lobby, the pending blocking terminal signal, the current turn notice, and
// any queued transient notices. Transient notices are display-once and are
// consumed by this read.
func HandleGetSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"user":        deps.Me,
			"myLobby":     deps.Store.MyLobby(),
			"deletedInfo": deps.Store.DeletedLobbyInfo(),
			"turnNotice":  deps.Signaler.Current(),
			"userNotices": deps.Store.DrainUserNotices(),
		}
		resp.RespondSuccess(w, r, data)
	}
}

type DismissSignalInput struct {
	// Signal names which ephemeral signal to acknowledge: "deleted" or "turn".
	Signal string `json:"signal"`
}

// HandleDismissSignal acknowledges an ephemeral signal. The blocking deleted
// signal and the turn notice persist until dismissed here (or, for the turn
// notice, until its display window lapses).
func HandleDismissSignal(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input DismissSignalInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		switch input.Signal {
		case "deleted":
			deps.Store.ClearDeletedLobbyInfo()
		case "turn":
			deps.Signaler.Dismiss()
		default:
			resp.RespondError(w, r, errs.NewError(errs.KeyInvalidParams))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"signal": input.Signal,
		})
	}
}

type RouteChangedInput struct {
	Route string `json:"route"`
}

// HandleRouteChanged records the rendering layer's current route so the turn
// signaler can suppress or hide notices for the lobby already on screen.
func HandleRouteChanged(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RouteChangedInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		deps.Signaler.SetRoute(input.Route)

		resp.RespondSuccess(w, r, map[string]any{
			"route": input.Route,
		})
	}
}
