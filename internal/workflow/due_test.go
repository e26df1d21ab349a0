package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDueDate(t *testing.T) {
	due, err := ParseDueDate(" 2026-06-01 ")
	require.NoError(t, err)
	require.NotNil(t, due)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), *due)

	due, err = ParseDueDate("")
	require.NoError(t, err)
	assert.Nil(t, due)

	_, err = ParseDueDate("June 1st")
	assert.ErrorContains(t, err, "June 1st")

	_, err = ParseDueDate("2026-13-01")
	assert.Error(t, err)
}
