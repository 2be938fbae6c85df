package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inncore/permissions"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	cancel := data.FindPermissions("/v1/hotels/{hotelID}/bookings/{id}/cancel", "POST")
	assert.True(t, cancel.Allows("guest"))

	checkIn := data.FindPermissions("/v1/hotels/{hotelID}/bookings/{id}/check-in", "POST")
	assert.False(t, checkIn.Allows("guest"))
	assert.True(t, checkIn.Allows("staff"))

	unknown := data.FindPermissions("/v1/unknown", "GET")
	assert.Equal(t, permissions.Permission{}, unknown)
	assert.True(t, unknown.Allows("guest"))
}
