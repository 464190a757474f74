package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitCube() *Brush {
	return NewCuboidBrush(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{16, 16, 16}, nil)
}

func TestCuboidBrushTopology(t *testing.T) {
	b := unitCube()
	assert.Len(t, b.Faces(), 6)
	assert.Len(t, b.Vertices(), 8)
	assert.Len(t, b.Edges(), 12)

	expected := []mgl32.Vec3{{0, 0, -1}, {0, 0, 1}, {-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}}
	for i, f := range b.Faces() {
		assert.True(t, f.Normal().ApproxEqual(expected[i]), "face %d normal %v", i, f.Normal())
		assert.Len(t, f.Edges(), 4)
		assert.Same(t, b, f.Brush())
	}

	box := b.Bounds()
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, box.Min)
	assert.Equal(t, mgl32.Vec3{16, 16, 16}, box.Max)
}

func TestBrushPartialSelection(t *testing.T) {
	m := NewMap()
	b := unitCube()
	m.Worldspawn().AddBrush(b)

	assert.False(t, b.PartiallySelected())
	assert.False(t, m.Worldspawn().PartiallySelected())

	changes := m.SelectFaces(b.Faces()[:1], false)
	assert.True(t, changes.FaceSelectionChanged())
	assert.True(t, b.PartiallySelected())
	assert.True(t, m.Worldspawn().PartiallySelected())

	m.SelectFaces(b.Faces(), false)
	assert.False(t, b.PartiallySelected(), "every face selected is not partial")
	assert.Equal(t, 6, b.SelectedFaceCount())

	changes = m.DeselectAll()
	assert.True(t, changes.FaceSelectionChanged())
	assert.Empty(t, m.SelectedFaces())
}

func TestSelectObjectsReplace(t *testing.T) {
	m := NewMap()
	a := NewEntity("light", nil)
	c := NewEntity("light", nil)
	require.NoError(t, m.AddEntity(a))
	require.NoError(t, m.AddEntity(c))

	changes := m.SelectObjects([]*Entity{a}, nil, true)
	assert.True(t, changes.EntityStateChangedTo(EditStateSelected))
	assert.Equal(t, []*Entity{a}, changes.EntitiesTo(EditStateSelected))

	changes = m.SelectObjects([]*Entity{c}, nil, true)
	assert.Equal(t, []*Entity{a}, changes.EntitiesFrom(EditStateSelected))
	assert.Equal(t, []*Entity{c}, changes.EntitiesTo(EditStateSelected))
	assert.Equal(t, []*Entity{c}, m.SelectedEntities())
}

func TestSelectSkipsLocked(t *testing.T) {
	m := NewMap()
	e := NewEntity("func_door", nil)
	b := unitCube()
	e.AddBrush(b)
	require.NoError(t, m.AddEntity(e))

	m.LockEntities([]*Entity{e})
	changes := m.SelectObjects([]*Entity{e}, []*Brush{b}, false)
	assert.True(t, changes.Empty())

	changes = m.SelectFaces(b.Faces(), false)
	assert.True(t, changes.Empty())
}

func TestLockEntitiesDropsSelection(t *testing.T) {
	m := NewMap()
	e := NewEntity("func_wall", nil)
	b := unitCube()
	e.AddBrush(b)
	require.NoError(t, m.AddEntity(e))

	m.SelectObjects(nil, []*Brush{b}, false)
	require.True(t, b.Selected())

	changes := m.LockEntities([]*Entity{e})
	assert.True(t, changes.BrushStateChangedFrom(EditStateSelected))
	assert.True(t, changes.EntityStateChangedTo(EditStateLocked))
	assert.False(t, b.Selected())
	assert.True(t, e.Locked())

	changes = m.UnlockAll()
	assert.True(t, changes.EntityStateChangedFrom(EditStateLocked))
	assert.False(t, e.Locked())
}

func TestChangeSetIgnoresNoops(t *testing.T) {
	var changes EditStateChangeSet
	e := NewEntity("light", nil)
	changes.AddEntity(e, EditStateDefault, EditStateDefault)
	assert.True(t, changes.Empty())

	changes.AddEntity(e, EditStateDefault, EditStateHidden)
	assert.False(t, changes.Empty())
	assert.True(t, changes.EntityStateChangedFrom(EditStateDefault))
	assert.False(t, changes.EntityStateChangedTo(EditStateSelected))
}

func TestEntityOriginAndBounds(t *testing.T) {
	e := NewEntity("light", map[string]string{"origin": "8 16 32"})
	assert.Equal(t, mgl32.Vec3{8, 16, 32}, e.Origin())

	box := e.Bounds()
	assert.Equal(t, mgl32.Vec3{0, 8, 24}, box.Min)
	assert.Equal(t, mgl32.Vec3{16, 24, 40}, box.Max)

	e.SetDefinition(&EntityDefinition{
		Name:   "light",
		Bounds: BBox{Min: mgl32.Vec3{-4, -4, -4}, Max: mgl32.Vec3{4, 4, 4}},
	})
	box = e.Bounds()
	assert.Equal(t, mgl32.Vec3{4, 12, 28}, box.Min)

	e.Translate(mgl32.Vec3{1, 0, 0})
	assert.Equal(t, mgl32.Vec3{9, 16, 32}, e.Origin())
	v, ok := e.Property(PropertyOrigin)
	assert.True(t, ok)
	assert.Equal(t, "9 16 32", v)
}

func TestBBoxVertices(t *testing.T) {
	box := BBox{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	verts := box.Vertices()
	require.Len(t, verts, 24)
	for i := 0; i < len(verts); i += 2 {
		d := verts[i+1].Sub(verts[i])
		assert.InDelta(t, 1, d.Len(), 1e-6, "edge %d is not a unit box edge", i/2)
	}
	assert.True(t, EmptyBBox().Empty())
	assert.False(t, EmptyBBox().MergePoint(mgl32.Vec3{}).Empty())
}

func TestParaxialCoords(t *testing.T) {
	floor := mgl32.Vec3{0, 0, 1}
	tc := ParaxialTexCoords(floor, mgl32.Vec3{32, 16, 0}, DefaultTexAttribs(), 64, 64)
	assert.InDelta(t, 0.5, tc[0], 1e-6)
	assert.InDelta(t, -0.25, tc[1], 1e-6)

	shifted := ParaxialTexCoords(floor, mgl32.Vec3{32, 16, 0}, TexAttribs{Offset: mgl32.Vec2{32, 0}, Scale: mgl32.Vec2{2, 2}}, 64, 64)
	assert.InDelta(t, 0.75, shifted[0], 1e-6)

	gc := ParaxialGridCoords(floor, mgl32.Vec3{32, 16, 0})
	assert.InDelta(t, 2, gc[0], 1e-6)
	assert.InDelta(t, -1, gc[1], 1e-6)

	x, y := ParaxialAxes(mgl32.Vec3{0.9, 0.1, 0})
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, x)
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, y)
}

func TestLoadDefinitions(t *testing.T) {
	src := `
definitions:
  - name: light
    type: point
    color: [1, 1, 0, 1]
    bounds: {min: [-8, -8, -8], max: [8, 8, 8]}
    model: {path: models/light.glb, skin: 1}
  - name: func_door
    type: brush
    color: [0, 0.5, 1, 1]
`
	set, err := LoadDefinitions(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, set, 2)

	light := set["light"]
	assert.Equal(t, PointEntity, light.Type)
	assert.Equal(t, float32(1), light.Color.G())
	require.NotNil(t, light.Model)
	assert.Equal(t, "models/light.glb", light.Model.Path)
	assert.Equal(t, 1, light.Model.Skin)
	assert.Equal(t, mgl32.Vec3{-8, -8, -8}, light.Bounds.Min)

	door := set["func_door"]
	assert.Equal(t, BrushEntity, door.Type)
	assert.True(t, door.Bounds.Empty())

	m := NewMap()
	e := NewEntity("func_door", nil)
	require.NoError(t, m.AddEntity(e))
	set.Apply(m)
	assert.Same(t, door, e.Definition())
}

func TestLoadDefinitionsErrors(t *testing.T) {
	_, err := LoadDefinitions(strings.NewReader("definitions:\n  - name: a\n    type: bogus\n"))
	assert.Error(t, err)

	_, err = LoadDefinitions(strings.NewReader("definitions:\n  - name: a\n  - name: a\n"))
	assert.True(t, errors.Is(err, ErrDuplicateDefinition))

	set, err := LoadDefinitions(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, set)
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) EntitiesAdded([]*Entity)             { o.events = append(o.events, "added") }
func (o *recordingObserver) EntitiesRemoved([]*Entity)           { o.events = append(o.events, "removed") }
func (o *recordingObserver) EditStateChanged(EditStateChangeSet) { o.events = append(o.events, "state") }
func (o *recordingObserver) ObjectsChanged([]*Entity, []*Brush)  { o.events = append(o.events, "objects") }
func (o *recordingObserver) MapLoaded(*Map)                      { o.events = append(o.events, "loaded") }
func (o *recordingObserver) MapCleared()                         { o.events = append(o.events, "cleared") }

func TestDocumentNotifiesObservers(t *testing.T) {
	doc := NewDocument()
	obs := &recordingObserver{}
	doc.Subscribe(obs)

	e := NewEntity("light", nil)
	require.NoError(t, doc.Submit(AddEntitiesCommand{Entities: []*Entity{e}}))
	require.NoError(t, doc.Submit(SelectObjectsCommand{Entities: []*Entity{e}, Replace: true}))
	require.NoError(t, doc.Submit(TranslateObjectsCommand{Entities: []*Entity{e}, Delta: mgl32.Vec3{16, 0, 0}}))
	require.NoError(t, doc.Submit(RemoveEntitiesCommand{Entities: []*Entity{e}}))
	assert.Equal(t, []string{"added", "state", "objects", "removed"}, obs.events)
	assert.Equal(t, mgl32.Vec3{16, 0, 0}, e.Origin())

	obs.events = nil
	err := doc.Submit(RemoveEntitiesCommand{Entities: []*Entity{e}})
	assert.True(t, errors.Is(err, ErrUnknownEntity))
	assert.Empty(t, obs.events)

	doc.Load(NewMap())
	doc.Clear()
	assert.Equal(t, []string{"cleared", "loaded", "cleared"}, obs.events)
}

func TestTranslateMovesOwnedBrushesOnce(t *testing.T) {
	m := NewMap()
	e := NewEntity("func_door", nil)
	b := unitCube()
	e.AddBrush(b)
	require.NoError(t, m.AddEntity(e))

	result, err := TranslateObjectsCommand{Entities: []*Entity{e}, Brushes: []*Brush{b}, Delta: mgl32.Vec3{0, 0, 8}}.Perform(m)
	require.NoError(t, err)
	assert.Equal(t, float32(8), b.Bounds().Min[2])
	assert.Equal(t, []*Brush{b}, result.ChangedBrushes)
}

func TestTranslateMovesEverySelectedWorldBrush(t *testing.T) {
	m := NewMap()
	a := unitCube()
	b := NewCuboidBrush(mgl32.Vec3{32, 0, 0}, mgl32.Vec3{48, 16, 16}, nil)
	m.Worldspawn().AddBrush(a)
	m.Worldspawn().AddBrush(b)

	result, err := TranslateObjectsCommand{Brushes: []*Brush{a, b}, Delta: mgl32.Vec3{16, 0, 0}}.Perform(m)
	require.NoError(t, err)
	assert.Equal(t, float32(16), a.Bounds().Min[0])
	assert.Equal(t, float32(48), b.Bounds().Min[0])
	assert.Equal(t, []*Entity{m.Worldspawn()}, result.ChangedEntities)
}

func TestFilterFuncsKeepHiddenObjectsOut(t *testing.T) {
	m := NewMap()
	door := NewEntity("func_door", nil)
	b := unitCube()
	door.AddBrush(b)
	require.NoError(t, m.AddEntity(door))
	light := NewEntity("light", nil)
	require.NoError(t, m.AddEntity(light))

	acceptAll := FilterFuncs{}
	assert.True(t, acceptAll.BrushVisible(b))
	assert.True(t, acceptAll.EntityVisible(light))
	assert.False(t, acceptAll.EntityVisible(m.Worldspawn()))

	m.HideEntities([]*Entity{door, light})
	assert.False(t, acceptAll.BrushVisible(b), "a hidden entity hides its brushes")
	assert.False(t, acceptAll.EntityVisible(light))

	noDoors := FilterFuncs{Entity: func(e *Entity) bool { return e.Classname() != "func_door" }}
	m.SetEntityState([]*Entity{door, light}, EditStateDefault)
	assert.False(t, noDoors.EntityVisible(door))
	assert.True(t, noDoors.EntityVisible(light))
	assert.True(t, noDoors.BrushVisible(b))
}
