// Package codegen builds short human-facing reference codes.
package codegen

import (
	"strings"

	"github.com/google/uuid"
)

// New returns prefix followed by n upper-case hex characters taken from a
// random UUID. Codes never contain '_', which the payment order info uses
// as its separator.
func New(prefix string, n int) string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	if n > len(raw) {
		n = len(raw)
	}
	return prefix + raw[:n]
}
