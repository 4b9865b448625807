package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{Validation("bad"), KindValidation},
		{Conflict("dup"), KindConflict},
		{NotFound("missing"), KindNotFound},
		{Forbidden("nope"), KindForbidden},
		{Auth("creds"), KindAuth},
		{Internal("boom", errors.New("db down")), KindInternal},
		{errors.New("plain"), KindInternal},
		{fmt.Errorf("wrapped: %w", NotFound("missing")), KindNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, KindOf(tc.err), tc.err.Error())
	}
}

func TestMessageHidesCause(t *testing.T) {
	err := Internal("Upload failed", errors.New("disk full"))
	assert.Equal(t, "Upload failed", Message(err))
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, "Server error", Message(errors.New("raw")))
}
