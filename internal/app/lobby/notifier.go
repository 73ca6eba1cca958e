/*
Package lobby contains the core logic for converging client-side lobby state.

This file defines the turn signaler: a two-state machine (hidden / shown)
for the transient "it's your turn" notice. The notice auto-hides after a
fixed window, and is suppressed or dismissed when the user is already on, or
navigates to, the target lobby's route.
*/
package lobby

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lobbysync/internal/pkg/logx"
)

// TurnNoticeTTL is the visibility window after which a shown notice
// auto-hides. New turn events do not extend it; only explicit dismissal or a
// navigation match hides it earlier.
const TurnNoticeTTL = 12 * time.Second

// RouteForLobby maps a lobby code to the rendering layer's route for it.
func RouteForLobby(lobbyCode string) string {
	return "/lobby/" + lobbyCode
}

// TurnSignaler tracks the visibility of the turn notice.
type TurnSignaler struct {
	mu sync.Mutex

	// current is the shown notice, nil while hidden.
	current *TurnNotice

	// route is the rendering layer's current route, reported via the local API.
	route string

	hideTimer *time.Timer

	ttl    time.Duration
	logger zerolog.Logger
}

// NewTurnSignaler returns a hidden signaler with the default visibility window.
func NewTurnSignaler() *TurnSignaler {
	return &TurnSignaler{
		ttl:    TurnNoticeTTL,
		logger: logx.Component("turn_signaler"),
	}
}

// Show transitions to shown unless the user is already viewing the target
// lobby. A newer notice replaces the current one and restarts the window.
func (t *TurnSignaler) Show(notice TurnNotice) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.route == RouteForLobby(notice.LobbyCode) {
		t.logger.Debug().
			Str("lobby_code", notice.LobbyCode).
			Msg("Turn notice suppressed: already viewing the lobby.")
		return
	}

	t.current = &notice
	t.restartTimerLocked()

	t.logger.Info().
		Str("lobby_code", notice.LobbyCode).
		Msg("Turn notice shown.")
}

// Dismiss hides the notice immediately.
func (t *TurnSignaler) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hideLocked()
}

// SetRoute records the rendering layer's current route. Navigating to the
// shown notice's target lobby counts as acting on it and hides it.
func (t *TurnSignaler) SetRoute(route string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.route = route

	if t.current != nil && RouteForLobby(t.current.LobbyCode) == route {
		t.hideLocked()
	}
}

// Current returns the shown notice, or nil while hidden.
func (t *TurnSignaler) Current() *TurnNotice {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return nil
	}
	notice := *t.current
	return &notice
}

// restartTimerLocked arms the auto-hide timer for the current notice.
// Caller must hold t.mu.
func (t *TurnSignaler) restartTimerLocked() {
	if t.hideTimer != nil {
		t.hideTimer.Stop()
	}

	shown := *t.current
	t.hideTimer = time.AfterFunc(t.ttl, func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		// Only hide if this exact notice is still showing.
		if t.current != nil && *t.current == shown {
			t.current = nil
		}
	})
}

// hideLocked stops the timer and clears the notice. Caller must hold t.mu.
func (t *TurnSignaler) hideLocked() {
	if t.hideTimer != nil {
		t.hideTimer.Stop()
		t.hideTimer = nil
	}
	t.current = nil
}
