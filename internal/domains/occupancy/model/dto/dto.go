package dto

import "inncore/internal/domains/occupancy/projector"

// OccupancyFilter narrows a projection by room type and computed status.
type OccupancyFilter struct {
	Type   string `json:"type"   validate:"omitempty,oneof=single double suite deluxe"`
	Status string `json:"status" validate:"omitempty,oneof=vacant reserved occupied dirty maintenance out_of_order"`
}

type RoomStatusResponse struct {
	ID             string `json:"id"`
	Number         string `json:"number"`
	Type           string `json:"type"`
	DeclaredStatus string `json:"declared_status"`
	ComputedStatus string `json:"computed_status"`
}

type OccupancyResponse struct {
	AsOf    string               `json:"as_of"`
	Rooms   []RoomStatusResponse `json:"rooms"`
	Summary map[string]int       `json:"summary"`
}

// FromProjections keeps the rows whose computed status passes status, when set. The summary
// counts every projected room.
func (r *OccupancyResponse) FromProjections(projections []projector.Projection, status string) {
	r.Rooms = make([]RoomStatusResponse, 0, len(projections))
	r.Summary = make(map[string]int)

	for _, p := range projections {
		r.Summary[string(p.Status)]++

		if status != "" && string(p.Status) != status {
			continue
		}

		r.Rooms = append(r.Rooms, RoomStatusResponse{
			ID:             p.Room.ID,
			Number:         p.Room.Number,
			Type:           string(p.Room.Type),
			DeclaredStatus: string(p.Room.Status),
			ComputedStatus: string(p.Status),
		})
	}
}
