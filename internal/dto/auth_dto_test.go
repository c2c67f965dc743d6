package dto

import (
	"testing"

	"medassist-be/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
)

func TestSignupRequest_ShortPasswordAccepted(t *testing.T) {
	// Any non-empty password is valid; length policy is left to clients.
	err := serverutils.ValidateRequest(&SignupRequest{Email: "a@b.com", Password: "pw"})

	assert.NoError(t, err)
}

func TestSignupRequest_RequiredFields(t *testing.T) {
	assert.Error(t, serverutils.ValidateRequest(&SignupRequest{Email: "a@b.com"}))
	assert.Error(t, serverutils.ValidateRequest(&SignupRequest{Password: "pw"}))
	assert.Error(t, serverutils.ValidateRequest(&SignupRequest{Email: "not-an-email", Password: "pw"}))
}
