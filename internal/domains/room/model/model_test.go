package model_test

import (
	"inncore/internal/domains/room/model"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoom_NightlyRate(t *testing.T) {
	assert.InDelta(t, 120.0, model.Room{BaseRate: 100, CurrentRate: 120}.NightlyRate(), 0.001)
	assert.InDelta(t, 100.0, model.Room{BaseRate: 100}.NightlyRate(), 0.001)
}

func TestRoom_Bookable(t *testing.T) {
	tests := []struct {
		name     string
		room     model.Room
		expected bool
	}{
		{name: "active vacant", room: model.Room{Active: true, Status: model.StatusVacant}, expected: true},
		{name: "inactive", room: model.Room{Active: false, Status: model.StatusVacant}, expected: false},
		{name: "dirty", room: model.Room{Active: true, Status: model.StatusDirty}, expected: false},
		{name: "maintenance", room: model.Room{Active: true, Status: model.StatusMaintenance}, expected: false},
		{name: "out of order", room: model.Room{Active: true, Status: model.StatusOutOfOrder}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.room.Bookable())
		})
	}
}

func TestStatusAndType_Valid(t *testing.T) {
	assert.True(t, model.StatusOutOfOrder.Valid())
	assert.False(t, model.Status("occupied").Valid())
	assert.True(t, model.StatusMaintenance.Blocked())
	assert.False(t, model.StatusDirty.Blocked())
	assert.True(t, model.TypeDeluxe.Valid())
	assert.False(t, model.Type("penthouse").Valid())
}

func TestByNumber(t *testing.T) {
	rooms := []model.Room{
		{ID: "c", Number: "110"},
		{ID: "a", Number: "9"},
		{ID: "d", Number: "PH-1"},
		{ID: "b", Number: "101"},
	}

	slices.SortStableFunc(rooms, model.ByNumber)

	numbers := make([]string, len(rooms))
	for i, room := range rooms {
		numbers[i] = room.Number
	}

	assert.Equal(t, []string{"9", "101", "110", "PH-1"}, numbers)
}
