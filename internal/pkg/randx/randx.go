/*
Package randx provides lobby-code validation and unique identifier generation.

Lobby codes are fixed-length Base62 strings minted by the platform backend;
the client validates them before routing or issuing commands. Notice IDs are
standard UUIDs generated locally.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// MinLobbyCodeLength and MaxLobbyCodeLength bound the lobby code lengths
	// the platform mints (short codes for normal lobbies, longer for events).
	MinLobbyCodeLength = 4
	MaxLobbyCodeLength = 8
)

// IsValidLobbyCode checks if the given string is a well-formed lobby code:
// between MinLobbyCodeLength and MaxLobbyCodeLength characters, all from the
// Base62 set.
func IsValidLobbyCode(code string) bool {
	if len(code) < MinLobbyCodeLength || len(code) > MaxLobbyCodeLength {
		return false
	}

	for _, char := range code {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

// NoticeID generates a UUID v4 string used to identify transient notices.
func NoticeID() string {
	return uuid.New().String()
}

// RequestID generates a cryptographically random Base62 string used to tag
// outbound gateway requests in logs.
func RequestID() (string, error) {
	const requestIDLength = 8

	result := make([]byte, requestIDLength)

	for i := 0; i < requestIDLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for request id: %v", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}
