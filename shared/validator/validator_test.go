package validator_test

import (
	"inncore/shared/failure"
	"inncore/shared/validator"
	"strings"
	"testing"
)

type stayRequest struct {
	CheckIn  string   `json:"check_in"  validate:"required,day"`
	CheckOut string   `json:"check_out" validate:"required,day"`
	RoomIDs  []string `json:"room_ids"  validate:"required,min=1,unique"`
	Adults   int      `json:"adults"    validate:"gte=1,lte=20"`
	Channel  string   `json:"channel"   validate:"omitempty,oneof=direct phone walk_in"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name        string
		data        *stayRequest
		expectError bool
		contains    string
	}{
		{
			name: "valid request",
			data: &stayRequest{
				CheckIn:  "2024-03-10",
				CheckOut: "2024-03-14",
				RoomIDs:  []string{"r-1"},
				Adults:   2,
				Channel:  "direct",
			},
		},
		{
			name: "malformed day",
			data: &stayRequest{
				CheckIn:  "10/03/2024",
				CheckOut: "2024-03-14",
				RoomIDs:  []string{"r-1"},
				Adults:   1,
			},
			expectError: true,
			contains:    "YYYY-MM-DD",
		},
		{
			name: "empty room list",
			data: &stayRequest{
				CheckIn:  "2024-03-10",
				CheckOut: "2024-03-14",
				RoomIDs:  []string{},
				Adults:   1,
			},
			expectError: true,
		},
		{
			name: "duplicate rooms",
			data: &stayRequest{
				CheckIn:  "2024-03-10",
				CheckOut: "2024-03-14",
				RoomIDs:  []string{"r-1", "r-1"},
				Adults:   1,
			},
			expectError: true,
			contains:    "duplicates",
		},
		{
			name: "unknown channel",
			data: &stayRequest{
				CheckIn:  "2024-03-10",
				CheckOut: "2024-03-14",
				RoomIDs:  []string{"r-1"},
				Adults:   1,
				Channel:  "ota",
			},
			expectError: true,
			contains:    "must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(tt.data)

			if !tt.expectError {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}

				return
			}

			if err == nil {
				t.Fatal("expected error, got nil")
			}

			if !failure.IsValidation(err) {
				t.Errorf("expected validation failure, got %T", err)
			}

			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("expected error to contain %q, got %q", tt.contains, err.Error())
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	if err := validator.ValidateVar("2024-01-04", "day"); err != nil {
		t.Errorf("expected valid day, got %v", err)
	}

	if err := validator.ValidateVar("2024-13-04", "day"); err == nil {
		t.Error("expected invalid month to fail")
	}
}

func TestValidate(t *testing.T) {
	body := `{"check_in":"2024-01-01","check_out":"2024-01-04","room_ids":["r-1"],"adults":2}`

	var req stayRequest
	if err := validator.Validate(strings.NewReader(body), &req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if req.CheckOut != "2024-01-04" {
		t.Errorf("expected check_out to be decoded, got %q", req.CheckOut)
	}

	var broken stayRequest
	if err := validator.Validate(strings.NewReader(`{"check_in":`), &broken); !failure.IsValidation(err) {
		t.Errorf("expected decode error to be a validation failure, got %v", err)
	}
}
