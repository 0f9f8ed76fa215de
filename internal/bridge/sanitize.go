package bridge

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// Caller-supplied relationship types end up interpolated into Cypher (edge
// types cannot be parameterized), so this is a trust boundary: anything that
// fails the allow-list is rejected before it reaches query construction.
var relationTypePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 _]*$`)

const maxRelationTypeLength = 64

// DefaultRelationType is used when a relationship carries no explicit type.
const DefaultRelationType = "REFERENCES"

// SanitizeRelationType maps a caller-supplied relation name to an
// identifier-safe uppercase token: letters, digits and underscores only, with
// spaces replaced by underscores. Empty input falls back to
// DefaultRelationType; anything outside the allow-list fails with
// INVALID_RELATIONSHIP_TYPE.
func SanitizeRelationType(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultRelationType, nil
	}
	if len(trimmed) > maxRelationTypeLength {
		return "", types.NewError(types.INVALID_RELATIONSHIP_TYPE,
			fmt.Sprintf("relationship type exceeds %d characters", maxRelationTypeLength))
	}
	if !relationTypePattern.MatchString(trimmed) {
		return "", types.NewError(types.INVALID_RELATIONSHIP_TYPE,
			fmt.Sprintf("relationship type %q contains disallowed characters", raw))
	}

	token := strings.ToUpper(trimmed)
	token = strings.ReplaceAll(token, " ", "_")
	return token, nil
}

// sanitizeRelationFilter sanitizes each caller-supplied type and joins them
// into a Cypher edge-type alternation. Empty input yields the default
// MENTIONS|REFERENCES filter.
func sanitizeRelationFilter(rawTypes []string) (string, error) {
	if len(rawTypes) == 0 {
		return "MENTIONS|REFERENCES", nil
	}

	tokens := make([]string, 0, len(rawTypes))
	for _, raw := range rawTypes {
		token, err := SanitizeRelationType(raw)
		if err != nil {
			return "", err
		}
		tokens = append(tokens, token)
	}
	return strings.Join(tokens, "|"), nil
}
