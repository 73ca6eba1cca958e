package randx

import (
	"strings"
	"testing"
)

func TestIsValidLobbyCode(t *testing.T) {
	valid := []string{"AB12", "abcd", "0000", "XyZ9", "EVNT2026", "abc123"}
	for _, code := range valid {
		if !IsValidLobbyCode(code) {
			t.Errorf("expected %q to be valid", code)
		}
	}

	invalid := []string{"", "abc", "toolongcode1", "AB 2", "AB-2", "ab1!", "日本語コード"}
	for _, code := range invalid {
		if IsValidLobbyCode(code) {
			t.Errorf("expected %q to be invalid", code)
		}
	}
}

func TestNoticeIDIsUnique(t *testing.T) {
	a := NoticeID()
	b := NoticeID()
	if a == "" || a == b {
		t.Fatalf("notice ids must be unique and non-empty, got %q and %q", a, b)
	}
}

func TestRequestIDShapeAndCharset(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 50; i++ {
		id, err := RequestID()
		if err != nil {
			t.Fatalf("RequestID failed: %v", err)
		}
		if len(id) != 8 {
			t.Fatalf("expected 8-char request id, got %q", id)
		}
		for _, char := range id {
			if !strings.ContainsRune(Base62Chars, char) {
				t.Fatalf("request id %q contains a non-base62 character", id)
			}
		}
		seen[id] = struct{}{}
	}

	if len(seen) < 45 {
		t.Fatalf("request ids collide too often: %d unique out of 50", len(seen))
	}
}
