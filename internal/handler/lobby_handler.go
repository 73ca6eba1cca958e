/*
Package handler provides HTTP handler functions for reading converged lobby
state and issuing lobby commands through the gateway.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lobbysync/internal/app/api"
	"lobbysync/internal/pkg/errs"
	"lobbysync/internal/pkg/randx"
	"lobbysync/internal/pkg/req"
	"lobbysync/internal/pkg/resp"
)

// HandleListLobbies returns the converged lobby list from the local store.
// It never reaches out to the backend; the synchronizer keeps the store fresh.
func HandleListLobbies(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"lobbies": deps.Store.Lobbies(),
		})
	}
}

// HandleListMembers returns the converged member list for one lobby.
func HandleListMembers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if !randx.IsValidLobbyCode(code) {
			resp.RespondError(w, r, errs.NewError(errs.KeyInvalidParams))
			return
		}

		members := deps.Store.Members(code)
		if members == nil {
			resp.RespondError(w, r, errs.NewError(errs.KeyLobbyNotFound))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"members": members,
		})
	}
}

// HandleCreateLobby forwards a creation request to the command gateway.
func HandleCreateLobby(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input api.CreatePayload
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.LobbyName == "" || input.MaxMembers <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.KeyInvalidParams))
			return
		}

		result, createErr := deps.Gateway.CreateLobby(r.Context(), input)
		if createErr != nil {
			resp.RespondError(w, r, createErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"lobby":     result.Lobby,
			"lobbyLink": result.LobbyLink,
		})
	}
}

// HandleDeleteLobby deletes the local user's lobby through the gateway.
func HandleDeleteLobby(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if !randx.IsValidLobbyCode(code) {
			resp.RespondError(w, r, errs.NewError(errs.KeyInvalidParams))
			return
		}

		mine := deps.Store.MyLobby()
		if mine == nil || mine.LobbyCode != code {
			resp.RespondError(w, r, errs.NewError(errs.KeyLobbyNotAuthorized))
			return
		}

		if deleteErr := deps.Gateway.DeleteLobby(r.Context(), code); deleteErr != nil {
			resp.RespondError(w, r, deleteErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"lobbyCode": code,
		})
	}
}

// HandleLeaveLobby removes the local user from a lobby through the gateway.
func HandleLeaveLobby(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if !randx.IsValidLobbyCode(code) {
			resp.RespondError(w, r, errs.NewError(errs.KeyInvalidParams))
			return
		}

		if leaveErr := deps.Gateway.LeaveLobby(r.Context(), code, deps.Me.ID); leaveErr != nil {
			resp.RespondError(w, r, leaveErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"lobbyCode": code,
		})
	}
}

type KickMemberInput struct {
	UserID string `json:"userId"`
}

// HandleKickMember removes another member from the local user's lobby. Only
// the host may kick, and never themselves.
func HandleKickMember(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if !randx.IsValidLobbyCode(code) {
			resp.RespondError(w, r, errs.NewError(errs.KeyInvalidParams))
			return
		}

		var input KickMemberInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.UserID == "" || deps.Me.Is(input.UserID) {
			resp.RespondError(w, r, errs.NewError(errs.KeyInvalidParams))
			return
		}

		mine := deps.Store.MyLobby()
		if mine == nil || mine.LobbyCode != code {
			resp.RespondError(w, r, errs.NewError(errs.KeyLobbyNotAuthorized))
			return
		}

		if kickErr := deps.Gateway.KickMember(r.Context(), code, input.UserID); kickErr != nil {
			resp.RespondError(w, r, kickErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"lobbyCode": code,
			"userId":    input.UserID,
		})
	}
}
