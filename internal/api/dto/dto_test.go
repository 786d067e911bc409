package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(LoginRequest{Email: "  "})
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, "notblank", de.Details["email"])
	assert.Equal(t, "required", de.Details["password"])

	assert.NoError(t, Validate(LoginRequest{Email: "tech@osi.vn", Password: "x"}))
}

func TestChangePasswordMustDiffer(t *testing.T) {
	err := Validate(ChangePasswordRequest{OldPassword: "a", NewPassword: "a"})
	assert.Equal(t, "nefield", apperrors.ToDomainError(err).Details["new_password"])
}

func TestStageRequestPosition(t *testing.T) {
	lat, lon := 10.776, 106.7
	req := StageRequest{Latitude: &lat, Longitude: &lon, Images: []string{"abc"}}
	require.NoError(t, Validate(req))
	in := req.Input()
	require.NotNil(t, in.Position)
	assert.Equal(t, lat, in.Position.Lat)

	bad := 120.0
	assert.Error(t, Validate(StageRequest{Latitude: &bad, Longitude: &lon}))
	assert.Error(t, Validate(StageRequest{Latitude: &lat}), "latitude alone is incomplete")
	assert.Nil(t, StageRequest{}.Input().Position)
}
