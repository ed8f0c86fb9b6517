package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeDup(t *testing.T) {
	d := NewDeDup(true)
	assert.True(t, d.Add("2026-10-15"), "passed, first time")
	assert.False(t, d.Add("2026-10-15"), "failed, dup")
	d.Remove("2026-10-15")
	assert.True(t, d.Add("2026-10-15"), "passed, removed before")
	assert.True(t, d.Add("2026-10-16"), "passed, next day")
	assert.False(t, d.Add("2026-10-16"), "failed, dup")
	assert.True(t, d.Add("2026-10-15"), "passed, previous day forgotten")
	assert.Len(t, d.sent, 1)
}

func TestDeDupDisabled(t *testing.T) {
	d := NewDeDup(false)
	assert.True(t, d.Add("2026-10-15"))
	assert.True(t, d.Add("2026-10-15"))
	d.Remove("2026-10-15")
	assert.True(t, d.Add("2026-10-15"))
	assert.Empty(t, d.sent)
}
