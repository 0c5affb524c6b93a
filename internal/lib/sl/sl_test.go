package sl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecretMasksValue(t *testing.T) {
	assert.Equal(t, "eyJ***9x", Secret("token", "eyJhbGciOiJIUzI1NiJ9x").Value.String())
	assert.Equal(t, "***", Secret("token", "abc").Value.String())
	assert.Equal(t, "", Secret("token", " ").Value.String())
}

func TestErrAttr(t *testing.T) {
	assert.Equal(t, "boom", Err(errors.New("boom")).Value.String())
	assert.Equal(t, "", Err(nil).Value.String())
}
