package anonymize

import (
	"strings"
	"testing"
)

func TestLabel_KnownValues(t *testing.T) {
	tests := []struct {
		playerID string
		want     string
	}{
		{"u1", "Player #BB82"},
		{"alice", "Player #2BD8"},
		{"550e8400-e29b-41d4-a716-446655440000", "Player #A3A9"},
	}

	for _, tt := range tests {
		if got := Label(tt.playerID); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", tt.playerID, got, tt.want)
		}
	}
}

func TestLabel_Deterministic(t *testing.T) {
	for _, id := range []string{"u1", "u2", "", "some-long-uuid-string"} {
		if Label(id) != Label(id) {
			t.Errorf("Label(%q) not stable across calls", id)
		}
	}
}

func TestLabel_Format(t *testing.T) {
	label := Label("whatever")
	if !strings.HasPrefix(label, "Player #") {
		t.Fatalf("label %q missing display prefix", label)
	}

	token := strings.TrimPrefix(label, "Player #")
	if len(token) != tokenLen {
		t.Errorf("token %q length = %d, want %d", token, len(token), tokenLen)
	}
	if token != strings.ToUpper(token) {
		t.Errorf("token %q is not upper-cased", token)
	}
}

// TestLabel_DoesNotContainInput documents the one-way property: the raw
// identifier never appears in the label.
func TestLabel_DoesNotContainInput(t *testing.T) {
	const id = "super-secret-player-uuid"
	if strings.Contains(Label(id), id) {
		t.Errorf("label leaks the raw identifier")
	}
}

// TestLabel_CollisionsAccepted documents the acknowledged non-uniqueness:
// the token space is only 16^4 labels, so distinct identifiers can share
// one. Grouping always happens on the raw identifier upstream, so this
// affects display only.
func TestLabel_CollisionsAccepted(t *testing.T) {
	const space = 16 * 16 * 16 * 16
	seen := make(map[string]bool, space)
	for i := 0; i < space+1; i++ {
		seen[Label(string(rune(i))+"-player")] = true
	}
	if len(seen) > space {
		t.Errorf("more distinct labels (%d) than the token space allows (%d)", len(seen), space)
	}
}
