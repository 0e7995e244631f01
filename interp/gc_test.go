package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkAndSweepCollectsUnreachable(t *testing.T) {
	interp := New(Options{})
	garbage := interp.newTrackedCell(mkInt(42))
	before := len(interp.gc.allocs)
	require.Contains(t, interp.gc.allocs, garbage)

	interp.MarkAndSweep()

	assert.NotContains(t, interp.gc.allocs, garbage, "unreachable cell should have been swept")
	assert.Less(t, len(interp.gc.allocs), before)
}

func TestRootStackProtectsTransientValue(t *testing.T) {
	interp := New(Options{})
	protected := interp.newTrackedCell(mkInt(7))
	mark := interp.gc.pushRoot(protected)

	interp.MarkAndSweep()
	assert.Contains(t, interp.gc.allocs, protected, "root-stack-protected cell must survive a collection")

	interp.gc.popRoot(mark)
	interp.MarkAndSweep()
	assert.NotContains(t, interp.gc.allocs, protected, "cell should be collectable once its root is popped")
}

func TestGCOffIsSticky(t *testing.T) {
	interp := New(Options{})
	interp.GCOff()
	interp.SetGCOn()
	assert.Equal(t, gcOff, interp.gc.mode, "GCOff must not be reversible via SetGCOn")
	interp.SetGCPostpone()
	assert.Equal(t, gcOff, interp.gc.mode, "GCOff must not be reversible via SetGCPostpone")
}

func TestUncollectableSurvivesSweep(t *testing.T) {
	interp := New(Options{})
	assert.Contains(t, interp.gc.allocs, interp.Nil)
	interp.MarkAndSweep()
	assert.Contains(t, interp.gc.allocs, interp.Nil, "uncollectable singletons must survive every sweep")
}
