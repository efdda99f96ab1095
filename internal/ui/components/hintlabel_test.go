package components

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 8, "short"},
		{"exactly8", 8, "exactly8"},
		{"much-too-long", 8, "much-to…"},
		{"héllo wörld", 6, "héllo…"},
		{"unbounded", 0, "unbounded"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateRunes(tt.in, tt.max), tt.in)
	}
}

func TestHintLabel(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	h := NewHintLabel("users", 8)
	assert.Equal(t, "users", h.Text())
	assert.False(t, h.needsTooltip())

	h.SetText("list-all-users")
	assert.Equal(t, "list-al…", h.Text())
	assert.Equal(t, "list-all-users", h.FullText())
	assert.True(t, h.needsTooltip())
}
