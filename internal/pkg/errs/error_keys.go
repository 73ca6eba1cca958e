/*
Package errs provides the typed error model used throughout the synchronizer.

These key constants identify specific business or system failures, both for
internal branching and in responses to the rendering layer. Keys mirror the
codes the platform backend returns, so gateway failures map one-to-one.
*/
package errs

// lobby.*: lobby command failures reported by the platform backend.
const (
	// KeyLobbyFull indicates the target lobby reached its member capacity.
	KeyLobbyFull = "lobby.full"

	// KeyLobbyInvalidPassword indicates a wrong password for a protected lobby.
	KeyLobbyInvalidPassword = "lobby.invalidPassword"

	// KeyLobbyGameInProgress indicates the lobby's game already started.
	KeyLobbyGameInProgress = "lobby.gameInProgress"

	// KeyLobbyNotFound indicates the lobby code does not exist on the server.
	KeyLobbyNotFound = "lobby.notFound"

	// KeyLobbyDuplicate indicates the local user already has a created lobby.
	KeyLobbyDuplicate = "lobby.duplicate"

	// KeyLobbyCreatePending indicates a create command is already in flight.
	KeyLobbyCreatePending = "lobby.createPending"

	// KeyLobbyNotAuthorized indicates the user may not perform the host action.
	KeyLobbyNotAuthorized = "lobby.notAuthorized"
)

// request.*: local API request handling failures.
const (
	// KeyInvalidParams indicates request parameter validation failed.
	KeyInvalidParams = "request.invalidParams"

	// KeyUnsupportedMediaType indicates an unsupported Content-Type header.
	KeyUnsupportedMediaType = "request.unsupportedMediaType"

	// KeyInvalidJSON indicates a malformed JSON request body.
	KeyInvalidJSON = "request.invalidJson"

	// KeyExtraContent indicates trailing content after the JSON body.
	KeyExtraContent = "request.extraContent"

	// KeyRateLimited indicates the outbound command rate limit was hit.
	KeyRateLimited = "request.rateLimited"
)

// network.* and fallback keys.
const (
	// KeyNetworkUnavailable indicates the platform backend was unreachable
	// or answered with a non-JSON/unexpected response.
	KeyNetworkUnavailable = "network.unavailable"

	// KeySessionExpired indicates the bearer session token is no longer valid.
	KeySessionExpired = "session.expired"

	// KeyUnknown represents an unclassified internal failure.
	KeyUnknown = "unknown"
)
