package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZuluTokenRendersUTC(t *testing.T) {
	eastern := time.FixedZone("EST", -5*3600)
	stamp := time.Date(2020, 6, 1, 7, 30, 45, 0, eastern)
	assert.Equal(t, "20200601123045Z", ZuluToken(stamp))
}

func TestZuluTokenRoundTrip(t *testing.T) {
	stamp := time.Date(2021, 12, 24, 18, 0, 1, 0, time.UTC)
	parsed, err := ParseZuluToken(ZuluToken(stamp))
	require.NoError(t, err)
	assert.True(t, stamp.Equal(parsed))
}

func TestParseZuluTokenEmptyIsZero(t *testing.T) {
	parsed, err := ParseZuluToken("")
	require.NoError(t, err)
	assert.True(t, parsed.IsZero())
}

func TestParseZuluTokenMalformed(t *testing.T) {
	_, err := ParseZuluToken("not-a-watermark")
	assert.Error(t, err)
}
