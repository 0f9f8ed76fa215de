package bridge

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

func TestSanitizeRelationType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple lowercase", input: "references", want: "REFERENCES"},
		{name: "spaces to underscores", input: "depends on", want: "DEPENDS_ON"},
		{name: "already uppercase", input: "MENTIONS", want: "MENTIONS"},
		{name: "digits allowed", input: "supersedes v2", want: "SUPERSEDES_V2"},
		{name: "underscores preserved", input: "part_of", want: "PART_OF"},
		{name: "surrounding whitespace trimmed", input: "  cites  ", want: "CITES"},
		{name: "empty falls back to default", input: "", want: "REFERENCES"},
		{name: "cypher injection rejected", input: "X]->(n) DETACH DELETE n //", wantErr: true},
		{name: "quotes rejected", input: `REL"TYPE`, wantErr: true},
		{name: "leading digit rejected", input: "2fast", wantErr: true},
		{name: "hyphen rejected", input: "linked-to", wantErr: true},
		{name: "unicode rejected", input: "関連", wantErr: true},
		{name: "overlong rejected", input: strings.Repeat("a", 65), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeRelationType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, types.NewError(types.INVALID_RELATIONSHIP_TYPE, "")))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeRelationFilter(t *testing.T) {
	t.Run("empty uses default edge types", func(t *testing.T) {
		filter, err := sanitizeRelationFilter(nil)
		require.NoError(t, err)
		assert.Equal(t, "MENTIONS|REFERENCES", filter)
	})

	t.Run("joins sanitized types", func(t *testing.T) {
		filter, err := sanitizeRelationFilter([]string{"mentions", "depends on"})
		require.NoError(t, err)
		assert.Equal(t, "MENTIONS|DEPENDS_ON", filter)
	})

	t.Run("one bad type fails the filter", func(t *testing.T) {
		_, err := sanitizeRelationFilter([]string{"mentions", "bad|type"})
		require.Error(t, err)
	})
}
