/*
Package api is the command gateway to the platform backend.

It exposes the write operations (create, delete, leave, kick) and the one-shot
lobby snapshot read as authenticated REST calls. Each command validates cheap
preconditions locally, issues the network call, and on success feeds a
local-origin action into the synchronizer when the event stream is not
guaranteed to echo the change back to this client. Failures surface as typed
errors and never touch the store.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"lobbysync/internal/app/lobby"
	"lobbysync/internal/app/user"
	"lobbysync/internal/configs"
	"lobbysync/internal/pkg/auth"
	"lobbysync/internal/pkg/errs"
	"lobbysync/internal/pkg/limiter"
	"lobbysync/internal/pkg/logx"
	"lobbysync/internal/pkg/randx"
)

const (
	// requestTimeout bounds every gateway call in addition to the caller's
	// context.
	requestTimeout = 15 * time.Second

	// commandRate and commandBurst throttle each command class so a
	// misbehaving rendering layer cannot flood the backend.
	commandRate  = 1.0
	commandBurst = 3
)

// ActionSink receives the local-origin actions a successful command produces.
type ActionSink interface {
	Enqueue(ctx context.Context, a lobby.Action) error
}

// CreatePayload is the request body for lobby creation.
type CreatePayload struct {
	LobbyName  string          `json:"lobbyName"`
	LobbyType  lobby.LobbyType `json:"lobbyType"`
	MaxMembers int             `json:"maxMembers"`
	Password   string          `json:"password,omitempty"`
	StartTime  *time.Time      `json:"startTime,omitempty"`
	EndTime    *time.Time      `json:"endTime,omitempty"`
}

// CreateResult is the backend's response to a successful creation.
type CreateResult struct {
	Lobby     lobby.Lobby    `json:"lobby"`
	LobbyLink string         `json:"lobbyLink"`
	Members   []lobby.Member `json:"members"`
}

// Client issues authenticated commands against the platform backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      *auth.SessionToken
	limiter    *limiter.CommandLimiter
	store      *lobby.Store
	sink       ActionSink
	me         user.User

	// creating is the double-submit guard: a second create command is
	// rejected while one is outstanding.
	creating atomic.Bool

	logger zerolog.Logger
}

// NewClient builds the gateway from the daemon configuration.
func NewClient(cfg *configs.AppConfig, store *lobby.Store, sink ActionSink, me user.User) *Client {
	return &Client{
		baseURL:    cfg.APIBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		token:      auth.NewSessionToken(cfg.SessionToken),
		limiter:    limiter.NewCommandLimiter(rate.Limit(commandRate), commandBurst),
		store:      store,
		sink:       sink,
		me:         me,
		logger:     logx.Component("command_gateway"),
	}
}

// CreateLobby creates a lobby on behalf of the local user and applies the
// optimistic local patch. Preconditions: no existing MyLobby, no create
// already in flight.
func (c *Client) CreateLobby(ctx context.Context, payload CreatePayload) (*CreateResult, *errs.CustomError) {
	if c.store.MyLobby() != nil {
		return nil, errs.NewError(errs.KeyLobbyDuplicate)
	}

	if !c.creating.CompareAndSwap(false, true) {
		return nil, errs.NewError(errs.KeyLobbyCreatePending)
	}
	defer c.creating.Store(false)

	if err := c.limiter.Allow("create"); err != nil {
		return nil, err
	}

	var result CreateResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/lobbies", payload, &result); err != nil {
		return nil, err
	}

	created := result.Lobby
	if created.CreatedBy == "" {
		created.CreatedBy = c.me.ID
	}
	if len(result.Members) > 0 {
		created.Members = result.Members
	}

	if err := c.sink.Enqueue(ctx, lobby.LobbyCreatedLocally{Lobby: created, LobbyLink: result.LobbyLink}); err != nil {
		c.logger.Error().Err(err).
			Str("lobby_code", created.LobbyCode).
			Msg("Lobby created on server but local patch could not be queued.")
	}

	return &result, nil
}

// DeleteLobby deletes the given lobby (host action) and applies the
// optimistic local patch: after deletion the server stops addressing this
// client as a lobby member, so the echo is not guaranteed.
func (c *Client) DeleteLobby(ctx context.Context, lobbyCode string) *errs.CustomError {
	if err := c.limiter.Allow("delete"); err != nil {
		return err
	}

	path := fmt.Sprintf("/api/lobbies/%s", lobbyCode)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}

	if err := c.sink.Enqueue(ctx, lobby.LobbyDeletedLocally{LobbyCode: lobbyCode}); err != nil {
		c.logger.Error().Err(err).
			Str("lobby_code", lobbyCode).
			Msg("Lobby deleted on server but local patch could not be queued.")
	}

	return nil
}

// LeaveLobby removes the given user (normally the local user) from a lobby
// and applies the optimistic local patch.
func (c *Client) LeaveLobby(ctx context.Context, lobbyCode, userID string) *errs.CustomError {
	if err := c.limiter.Allow("leave"); err != nil {
		return err
	}

	path := fmt.Sprintf("/api/lobbies/%s/leave", lobbyCode)
	body := map[string]string{"userId": userID}
	if err := c.doJSON(ctx, http.MethodPost, path, body, nil); err != nil {
		return err
	}

	if err := c.sink.Enqueue(ctx, lobby.LobbyLeftLocally{LobbyCode: lobbyCode, UserID: userID}); err != nil {
		c.logger.Error().Err(err).
			Str("lobby_code", lobbyCode).
			Msg("Left lobby on server but local patch could not be queued.")
	}

	return nil
}

// KickMember removes another member from the local user's lobby (host
// action). No optimistic patch: the PLAYER_KICKED_BY_HOST broadcast reaches
// this client, and the reducer applies it there.
func (c *Client) KickMember(ctx context.Context, lobbyCode, userID string) *errs.CustomError {
	if err := c.limiter.Allow("kick"); err != nil {
		return err
	}

	path := fmt.Sprintf("/api/lobbies/%s/kick", lobbyCode)
	body := map[string]string{"userId": userID}
	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

// FetchLobbies performs the one-shot authoritative snapshot read used by
// session recovery. It implements lobby.SnapshotFetcher.
func (c *Client) FetchLobbies(ctx context.Context) ([]lobby.Lobby, error) {
	var data struct {
		Lobbies []lobby.Lobby `json:"lobbies"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/lobbies", nil, &data); err != nil {
		return nil, err
	}
	return data.Lobbies, nil
}

// serverEnvelope is the backend's standard response wrapper.
type serverEnvelope struct {
	Key     string          `json:"key"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doJSON performs one authenticated JSON round trip. Backend failures map
// one-to-one onto typed errors via the shared error keys; transport-level
// failures collapse to network.unavailable.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) *errs.CustomError {
	if c.token.Expired() {
		return errs.NewError(errs.KeySessionExpired)
	}
	if c.token.NearingExpiry() {
		c.logger.Warn().
			Time("token_expiry", c.token.Expiry()).
			Msg("Session token is nearing expiry.")
	}

	requestID, err := randx.RequestID()
	if err != nil {
		requestID = "unknown"
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			c.logger.Error().Err(err).Str("path", path).Msg("Failed to encode request body.")
			return errs.NewError(errs.KeyUnknown, err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errs.NewError(errs.KeyUnknown, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token.Raw() != "" {
		req.Header.Set("Authorization", "Bearer "+c.token.Raw())
	}

	started := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Msg("Backend request failed.")
		return errs.NewError(errs.KeyNetworkUnavailable)
	}
	defer res.Body.Close()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", res.StatusCode).
		Dur("latency", time.Since(started)).
		Msg("Backend request completed.")

	if res.StatusCode == http.StatusUnauthorized {
		return errs.NewError(errs.KeySessionExpired)
	}

	var envelope serverEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return errs.NewError(errs.KeyNetworkUnavailable)
	}

	if res.StatusCode >= 400 {
		// NewError falls back to KeyUnknown for keys this client predates.
		return errs.NewError(envelope.Key)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errs.NewError(errs.KeyNetworkUnavailable)
		}
	}

	return nil
}
