package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinute(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:00", 540},
		{"9:30", 570},
		{"13:05", 785},
		{"24:00", 1440},
	}
	for _, tc := range cases {
		got, err := ParseMinute(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "morning", "25:00", "12:60", "24:01", "-1:00"} {
		_, err := ParseMinute(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatMinuteRoundTrip(t *testing.T) {
	for _, m := range []int{0, 540, 570, 785, 1439} {
		got, err := ParseMinute(FormatMinute(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestCredentialPasswordHashing(t *testing.T) {
	var c Credential
	require.NoError(t, c.SetPassword("s3cret"))

	assert.NotEqual(t, "s3cret", c.PasswordHash)
	assert.True(t, c.CheckPassword("s3cret"))
	assert.False(t, c.CheckPassword("wrong"))
}

func TestAppointmentStatusTerminal(t *testing.T) {
	assert.False(t, StatusBooked.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}
