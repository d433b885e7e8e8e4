package validation

import (
	"net/http"
	"testing"
	"time"

	"github.com/richxcame/car-rental/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Plate    string  `json:"plate" validate:"required,plate"`
	Odometer float64 `json:"odometer" validate:"odometer"`
	CityID   int     `json:"city_id" validate:"required,gt=0"`
	Colour   string  `json:"colour" validate:"omitempty,colour"`
}

func init() {
	Register("colour", func(s string) bool { return s == "red" || s == "blue" })
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       sampleRequest
		expectErr bool
		field     string
	}{
		{"valid", sampleRequest{Plate: "34 ABC 12", Odometer: 10, CityID: 1}, false, ""},
		{"negative odometer", sampleRequest{Plate: "34ABC12", Odometer: -1, CityID: 1}, true, "odometer"},
		{"missing city", sampleRequest{Plate: "34ABC12"}, true, "city_id"},
		{"bad plate", sampleRequest{Plate: "<script>", CityID: 1}, true, "plate"},
		{"custom rule", sampleRequest{Plate: "AB12", CityID: 1, Colour: "green"}, true, "colour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if !tt.expectErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			appErr, ok := common.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, appErr.Code)
			assert.Equal(t, common.CodeValidation, appErr.ErrorCode)
			assert.Contains(t, appErr.Message, tt.field)
			assert.Contains(t, appErr.Fields, tt.field)
		})
	}
}

func TestValidateDateRange(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)
	after := start.Add(time.Hour)

	assert.NoError(t, ValidateDateRange("return_date", start, nil))
	assert.NoError(t, ValidateDateRange("return_date", start, &after))
	assert.NoError(t, ValidateDateRange("return_date", start, &start))

	err := ValidateDateRange("return_date", start, &before)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "return_date")
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	v := &ValidationError{}
	v.AddError("b", "second")
	v.AddError("a", "first")

	assert.True(t, v.HasErrors())
	assert.Equal(t, "validation failed: a: first; b: second", v.Error())
}
