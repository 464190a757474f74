package tool

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-map/common"
	"github.com/Carmen-Shannon/oxy-map/engine/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// newTestToolBox returns a tool box looking along +Y from (0, -100, 0) at the test scene, with
// the cursor at the center of a 200x100 view.
func newTestToolBox(t *testing.T) (*ToolBox, *recordingTool, *[]string, *fakeClock) {
	t.Helper()
	s := newScene(t)
	cam := camera.NewCamera(
		camera.WithViewport(200, 100),
		camera.WithController(camera.NewOrbitController(camera.WithRadius(100), camera.WithElevation(0))),
	)
	log := &[]string{}
	rec := &recordingTool{name: "rec", log: log}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	tb := NewToolBox(NewChain(rec), cam, s.doc, WithClock(clock.Now))
	tb.MouseMove(100, 50)
	*log = nil
	return tb, rec, log, clock
}

func TestToolBoxPicksUnderCursor(t *testing.T) {
	tb, _, log, _ := newTestToolBox(t)

	tb.MouseDown(common.MouseButtonLeft)
	assert.Equal(t, []string{"rec:pick", "rec:down"}, *log)

	input := tb.InputState()
	assert.True(t, input.ButtonDown(common.MouseButtonLeft))
	hit, ok := input.Pick().First(nil)
	require.True(t, ok)
	assert.Equal(t, HitTypeFace, hit.Type)
	assert.InDelta(t, 92, hit.Distance, 1e-2)
}

func TestToolBoxClickAndDoubleClick(t *testing.T) {
	tb, _, log, clock := newTestToolBox(t)

	tb.MouseDown(common.MouseButtonLeft)
	tb.MouseUp(common.MouseButtonLeft)
	assert.Equal(t, []string{"rec:pick", "rec:down", "rec:pick", "rec:click", "rec:up"}, *log)
	assert.False(t, tb.InputState().ButtonDown(common.MouseButtonLeft))

	*log = nil
	clock.Advance(100 * time.Millisecond)
	tb.MouseDown(common.MouseButtonLeft)
	tb.MouseUp(common.MouseButtonLeft)
	assert.Contains(t, *log, "rec:double click")
	assert.NotContains(t, *log, "rec:click")

	*log = nil
	clock.Advance(100 * time.Millisecond)
	tb.MouseDown(common.MouseButtonLeft)
	tb.MouseUp(common.MouseButtonLeft)
	assert.Contains(t, *log, "rec:click", "a third click starts a new sequence")

	*log = nil
	clock.Advance(time.Second)
	tb.MouseDown(common.MouseButtonLeft)
	tb.MouseUp(common.MouseButtonLeft)
	assert.Contains(t, *log, "rec:click")
	assert.NotContains(t, *log, "rec:double click")
}

func TestToolBoxRoutesDragToClaimingTool(t *testing.T) {
	tb, rec, log, _ := newTestToolBox(t)
	rec.claimDrag = true

	tb.MouseDown(common.MouseButtonLeft)
	tb.MouseMove(102, 50)
	assert.False(t, tb.Dragging(), "movement within the threshold is not a drag")

	*log = nil
	tb.MouseMove(110, 50)
	require.True(t, tb.Dragging())
	assert.Equal(t, []string{"rec:start drag"}, *log)

	tb.MouseMove(120, 50)
	assert.Equal(t, 1, rec.drags)
	assert.Equal(t, float32(10), tb.InputState().DeltaX)

	*log = nil
	tb.MouseUp(common.MouseButtonLeft)
	assert.Equal(t, []string{"rec:end drag", "rec:up"}, *log)
	assert.False(t, tb.Dragging())
}

func TestToolBoxUnclaimedDragSuppressesClick(t *testing.T) {
	tb, _, log, _ := newTestToolBox(t)

	tb.MouseDown(common.MouseButtonLeft)
	tb.MouseMove(110, 50)
	assert.False(t, tb.Dragging())
	assert.Contains(t, *log, "rec:start drag")

	*log = nil
	tb.MouseMove(120, 50)
	assert.NotContains(t, *log, "rec:start drag", "a drag is offered once per press")

	*log = nil
	tb.MouseUp(common.MouseButtonLeft)
	assert.Equal(t, []string{"rec:up"}, *log)
}

func TestToolBoxEscapeCancels(t *testing.T) {
	tb, rec, log, _ := newTestToolBox(t)
	rec.claimDrag = true

	tb.MouseDown(common.MouseButtonLeft)
	tb.MouseMove(110, 50)
	require.True(t, tb.Dragging())

	*log = nil
	assert.True(t, tb.KeyDown(common.KeyEsc))
	assert.Equal(t, []string{"rec:cancel drag"}, *log)
	assert.False(t, tb.Dragging())

	*log = nil
	assert.False(t, tb.KeyDown(common.KeyEsc))
	assert.Equal(t, []string{"rec:cancel"}, *log)
}

func TestToolBoxTracksModifiers(t *testing.T) {
	tb, _, log, _ := newTestToolBox(t)

	assert.True(t, tb.KeyDown(common.KeyLeftControl))
	assert.True(t, tb.KeyDown(common.KeyRightShift))
	assert.Equal(t, common.ModControl|common.ModShift, tb.InputState().Modifiers)
	assert.Equal(t, []string{"rec:modifiers", "rec:modifiers"}, *log)

	assert.True(t, tb.KeyUp(common.KeyLeftControl))
	assert.Equal(t, common.ModShift, tb.InputState().Modifiers)

	assert.False(t, tb.KeyDown(common.KeyA))
	assert.False(t, tb.KeyUp(common.KeyA))
}

func TestToolBoxExternalDrag(t *testing.T) {
	tb, rec, _, _ := newTestToolBox(t)

	assert.False(t, tb.DragEnter("light", 100, 50))
	assert.False(t, tb.DragDrop(100, 50))

	rec.claimDrop = true
	assert.True(t, tb.DragEnter("light", 100, 50))
	tb.DragLeave()
	assert.False(t, tb.DragMove(110, 50), "nothing is accepted after leaving")
}
