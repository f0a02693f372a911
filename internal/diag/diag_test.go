package diag

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDebugger struct {
	lines []string
}

func (c *captureDebugger) Printf(format string, v ...interface{}) {
	c.lines = append(c.lines, fmt.Sprintf(format, v...))
}

func TestCollector(t *testing.T) {
	t.Run("should record diagnostics in order", func(t *testing.T) {
		c := NewCollector(nil)
		c.Warn([]string{"builder", "GET", "/a"}, "first %s", "warning")
		c.Error([]string{"builder", "GET", "/a"}, "then an error")

		entries := c.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, SeverityWarning, entries[0].Severity)
		assert.Equal(t, "first warning", entries[0].Message)
		assert.Equal(t, SeverityError, entries[1].Severity)
	})

	t.Run("should report errors separately from warnings", func(t *testing.T) {
		c := NewCollector(nil)
		c.Warn([]string{"x"}, "warn only")
		assert.False(t, c.HasErrors())

		c.Error([]string{"x"}, "now an error")
		assert.True(t, c.HasErrors())

		assert.Len(t, c.Filter(SeverityWarning), 1)
		assert.Len(t, c.Filter(SeverityError), 1)
	})

	t.Run("should mirror to the debugger when set", func(t *testing.T) {
		dbg := &captureDebugger{}
		c := NewCollector(dbg)
		c.Warn([]string{"builder", "GET", "/a"}, "placeholder substituted")

		require.Len(t, dbg.lines, 1)
		assert.Contains(t, dbg.lines[0], "[warning]")
		assert.Contains(t, dbg.lines[0], "builder,GET,/a")
		assert.Contains(t, dbg.lines[0], "placeholder substituted")
	})
}
