package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRequestValidation(t *testing.T) {
	tests := []struct {
		name   string
		req    UserRequest
		fields []string
	}{
		{
			name: "valid",
			req:  UserRequest{FirstName: "Ann", LastName: "Lee", Email: "a@x.com"},
		},
		{
			name: "email shape is not checked",
			req:  UserRequest{FirstName: "Ann", LastName: "Lee", Email: "not-an-email"},
		},
		{
			name:   "all missing",
			req:    UserRequest{},
			fields: []string{"firstName", "lastName", "email"},
		},
		{
			name:   "blank last name",
			req:    UserRequest{FirstName: "Ann", LastName: "   ", Email: "a@x.com"},
			fields: []string{"lastName"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate.Struct(tt.req)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			errs := FieldErrors(err)
			for _, f := range tt.fields {
				assert.Contains(t, errs, f)
				assert.Equal(t, []string{f + " is required"}, errs[f])
			}
			assert.Len(t, errs, len(tt.fields))
		})
	}
}

func TestToUserKeepsAllFields(t *testing.T) {
	u := UserRequest{ID: 4, FirstName: "Ann", LastName: "Lee", Email: "a@x.com", IsManager: true}.ToUser()
	assert.EqualValues(t, 4, u.ID)
	assert.Equal(t, "Ann", u.FirstName)
	assert.Equal(t, "Lee", u.LastName)
	assert.Equal(t, "a@x.com", u.Email)
	assert.True(t, u.IsManager)
}

func TestValidatorKnowsNotBlank(t *testing.T) {
	req := UserRequest{FirstName: "Ann", LastName: "Lee", Email: "a@x.com"}
	require.NotPanics(t, func() {
		assert.NoError(t, Validate.Struct(req))
	})

	req.FirstName = "\t "
	err := Validate.Struct(req)
	require.Error(t, err)
	assert.Equal(t, map[string][]string{"firstName": {"firstName is required"}}, FieldErrors(err))
}
