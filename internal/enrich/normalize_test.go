package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immocli/internal/errors"
)

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer(4)

	tests := []struct {
		name     string
		raw      string
		expected PostalCode
		wantErr  bool
	}{
		{
			name:     "plain code",
			raw:      "1000",
			expected: "1000",
		},
		{
			name:     "short code is zero padded",
			raw:      "83",
			expected: "0083",
		},
		{
			name:     "surrounding whitespace",
			raw:      "  9000 ",
			expected: "9000",
		},
		{
			name:     "float artifact from numeric column",
			raw:      "1000.0",
			expected: "1000",
		},
		{
			name:     "comma separated list keeps first code",
			raw:      "1000, 1020",
			expected: "1000",
		},
		{
			name:     "embedded non digits are stripped",
			raw:      "B-1000",
			expected: "1000",
		},
		{
			name:    "no digits at all",
			raw:     "unknown",
			wantErr: true,
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "too many digits",
			raw:     "123456",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.Normalize(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrTypeMalformedKey))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Len(t, string(got), n.Width())
		})
	}
}

func TestNormalizer_ErrorMessages(t *testing.T) {
	n := NewNormalizer(4)

	t.Run("no digits", func(t *testing.T) {
		_, err := n.Normalize("unknown")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no digits")
	})

	t.Run("too many digits names the width", func(t *testing.T) {
		_, err := n.Normalize("123456")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "6 digits")
		assert.Contains(t, err.Error(), "width is 4")
		assert.NotContains(t, err.Error(), "no digits")
	})
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := NewNormalizer(4)

	for _, raw := range []string{"1000", "83", "B-1000", "1000.0", "1000, 1020", "007"} {
		once, err := n.Normalize(raw)
		require.NoError(t, err, "raw %q", raw)

		twice, err := n.Normalize(string(once))
		require.NoError(t, err, "canonical %q", once)
		assert.Equal(t, once, twice, "normalize must be idempotent for %q", raw)
	}
}

func TestNewNormalizer_DefaultWidth(t *testing.T) {
	n := NewNormalizer(0)
	assert.Equal(t, DefaultKeyWidth, n.Width())

	got, err := n.Normalize("12")
	require.NoError(t, err)
	assert.Equal(t, PostalCode("0012"), got)
}
