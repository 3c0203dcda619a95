package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	assert.Empty(t, ProgressBar(1, 0, 10))
	assert.Empty(t, ProgressBar(1, 10, 0))

	half := ProgressBar(5, 10, 10)
	assert.Equal(t, 5, strings.Count(half, "█"))
	assert.Equal(t, 5, strings.Count(half, "░"))

	over := ProgressBar(20, 10, 10)
	assert.Equal(t, 10, strings.Count(over, "█"))
	assert.Zero(t, strings.Count(over, "░"))
}
