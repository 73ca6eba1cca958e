/*
Package errs provides the typed error model used throughout the synchronizer.

This file defines the map from error keys to CustomError templates, used to
standardize local API responses and user-visible failure messages.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error key.
var errorMap = map[string]CustomError{
	// lobby.*: lobby command failures.
	KeyLobbyFull:            {Key: KeyLobbyFull, Message: "This lobby is full.", Severity: SeverityWarning, Status: http.StatusConflict},
	KeyLobbyInvalidPassword: {Key: KeyLobbyInvalidPassword, Message: "Incorrect lobby password.", Severity: SeverityWarning, Status: http.StatusForbidden},
	KeyLobbyGameInProgress:  {Key: KeyLobbyGameInProgress, Message: "The game in this lobby has already started.", Severity: SeverityWarning, Status: http.StatusConflict},
	KeyLobbyNotFound:        {Key: KeyLobbyNotFound, Message: "Lobby not found.", Severity: SeverityError, Status: http.StatusNotFound},
	KeyLobbyDuplicate:       {Key: KeyLobbyDuplicate, Message: "You already have an open lobby. Close it before creating another.", Severity: SeverityWarning, Status: http.StatusConflict},
	KeyLobbyCreatePending:   {Key: KeyLobbyCreatePending, Message: "A lobby is already being created. Please wait.", Severity: SeverityWarning, Status: http.StatusConflict},
	KeyLobbyNotAuthorized:   {Key: KeyLobbyNotAuthorized, Message: "Only the host can do that.", Severity: SeverityError, Status: http.StatusForbidden},

	// request.*: local API request handling failures.
	KeyInvalidParams:        {Key: KeyInvalidParams, Message: "Invalid request parameters.", Severity: SeverityError, Status: http.StatusBadRequest},
	KeyUnsupportedMediaType: {Key: KeyUnsupportedMediaType, Message: "Unsupported request format.", Severity: SeverityError, Status: http.StatusUnsupportedMediaType},
	KeyInvalidJSON:          {Key: KeyInvalidJSON, Message: "Unsupported request format.", Severity: SeverityError, Status: http.StatusBadRequest},
	KeyExtraContent:         {Key: KeyExtraContent, Message: "Request contains unexpected data.", Severity: SeverityError, Status: http.StatusBadRequest},
	KeyRateLimited:          {Key: KeyRateLimited, Message: "Too many requests. Please try again later.", Severity: SeverityWarning, Status: http.StatusTooManyRequests},

	// network.* and fallbacks.
	KeyNetworkUnavailable: {Key: KeyNetworkUnavailable, Message: "Could not reach the game server. Please try again.", Severity: SeverityError, Status: http.StatusBadGateway},
	KeySessionExpired:     {Key: KeySessionExpired, Message: "Your session expired. Please sign in again.", Severity: SeverityError, Status: http.StatusUnauthorized},
	KeyUnknown:            {Key: KeyUnknown, Message: "Something went wrong. Please try again.", Severity: SeverityError, Status: http.StatusInternalServerError},
}
