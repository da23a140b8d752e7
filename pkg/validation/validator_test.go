package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type actionRequest struct {
	UserID     string `validate:"required,uuid"`
	ActionType string `validate:"required,action_type"`
	IPAddress  string `validate:"omitempty,ip"`
	Message    string `validate:"omitempty,max=10"`
}

// ---------------------------------------------------------------------------
// ValidateStruct
// ---------------------------------------------------------------------------

func TestValidateStruct_Valid(t *testing.T) {
	for _, action := range ActionTypes {
		req := actionRequest{
			UserID:     "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
			ActionType: action,
			IPAddress:  "203.0.113.9",
		}
		assert.NoError(t, ValidateStruct(&req), action)
	}
}

func TestValidateStruct_CollectsFieldErrors(t *testing.T) {
	req := actionRequest{
		ActionType: "delete_account",
		IPAddress:  "not-an-ip",
		Message:    "far too long for the limit",
	}

	err := ValidateStruct(&req)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Errors["userid"])
	assert.Contains(t, verr.Errors["actiontype"], "create_listing")
	assert.Equal(t, "must be an IP address", verr.Errors["ipaddress"])
	assert.Equal(t, "must be at most 10", verr.Errors["message"])
	assert.Contains(t, err.Error(), "validation failed: actiontype")
}

// ---------------------------------------------------------------------------
// ValidationError
// ---------------------------------------------------------------------------

func TestValidationError_AddError(t *testing.T) {
	var v ValidationError
	assert.False(t, v.HasErrors())

	v.AddError("amount", "must be positive")
	assert.True(t, v.HasErrors())
	assert.Equal(t, "validation failed: amount: must be positive", v.Error())
}

// ---------------------------------------------------------------------------
// Rules
// ---------------------------------------------------------------------------

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"typical", 120.5, false},
		{"upper bound", 100000, false},
		{"negative", -1, true},
		{"too large", 100000.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
