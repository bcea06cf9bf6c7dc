package sqlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInClauseArgs(t *testing.T) {
	ph, args := InClauseArgs([]string{"post", "report"})
	assert.Equal(t, "?, ?", ph)
	assert.Equal(t, []any{"post", "report"}, args)

	ph, args = InClauseArgs([]int64{7})
	assert.Equal(t, "?", ph)
	assert.Equal(t, []any{int64(7)}, args)

	ph, args = InClauseArgs[string](nil)
	assert.Equal(t, "NULL", ph)
	assert.Nil(t, args)
}
