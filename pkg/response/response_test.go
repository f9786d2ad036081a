package response

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PunchClock/pkg/errors"
)

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		def        errors.Definition
		wantStatus int
	}{
		{errors.InvalidInput, 400},
		{errors.InvalidTimestamp, 400},
		{errors.Unauthorized, 401},
		{errors.InvalidCredential, 401},
		{errors.NoOpenPunch, 404},
		{errors.PunchOutDisabled, 404},
		{errors.PunchAlreadyOpen, 409},
		{errors.TooManyRequests, 429},
		{errors.StoreUnavailable, 500},
		{errors.VerificationUnavailable, 500},
	}

	for _, tt := range tests {
		t.Run(tt.def.Code, func(t *testing.T) {
			c := app.NewContext(0)
			Error(context.Background(), c, tt.def)
			assert.Equal(t, tt.wantStatus, c.Response.StatusCode())

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(c.Response.Body(), &body))
			assert.Equal(t, tt.def.Code, body.Error.Code)
			assert.Equal(t, tt.def.Message, body.Error.Message)
		})
	}
}

func TestErrorAcceptsPointerDefinitions(t *testing.T) {
	c := app.NewContext(0)
	Error(context.Background(), c, &errors.NoOpenPunch)
	assert.Equal(t, 404, c.Response.StatusCode())
}

func TestErrorFallsBackForUnknownErrors(t *testing.T) {
	c := app.NewContext(0)
	Error(context.Background(), c, assert.AnError)
	assert.Equal(t, 500, c.Response.StatusCode())

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(c.Response.Body(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
}
