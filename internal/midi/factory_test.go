package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/florimondmanca/obs-midi/internal/logger"
)

func TestNewOpener_NeverNil(t *testing.T) {
	opener := NewOpener(logger.NewZapLogger())
	assert.NotNil(t, opener)
}
