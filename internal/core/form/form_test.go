package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGroup() *Group {
	return NewGroup(
		NewControl("a", "", Required),
		NewControl("b", "", Required),
	)
}

func TestRequiredValidator(t *testing.T) {

	assert := assert.New(t)

	assert.ErrorIs(Required(nil), ErrRequired)
	assert.ErrorIs(Required(""), ErrRequired)
	assert.ErrorIs(Required([]string{}), ErrRequired)
	assert.NoError(Required("x"))
	assert.NoError(Required([]string{"x"}))
}

func TestGroupSetValueRequiresAllKeys(t *testing.T) {

	require := require.New(t)

	g := testGroup()

	err := g.SetValue(map[string]any{"a": "1"})
	require.ErrorIs(err, ErrMissingValue)
	require.Equal("", g.Value()["a"], "nothing changes on error")

	err = g.SetValue(map[string]any{"a": "1", "b": "2", "c": "3"})
	require.ErrorIs(err, ErrUnknownControl)

	err = g.SetValue(map[string]any{"a": "1", "b": nil})
	require.NoError(err)
	require.Equal(map[string]any{"a": "1", "b": nil}, g.Value())
	require.False(g.Valid())
	require.Equal([]string{"b"}, g.InvalidControls())
}

func TestGroupPatchAndReset(t *testing.T) {

	assert := assert.New(t)

	g := testGroup()
	g.PatchValue(map[string]any{"a": "1", "zzz": "ignored"})
	assert.Equal("1", g.Value()["a"])
	assert.Equal("", g.Value()["b"])

	g.PatchValue(map[string]any{"b": []string{"x", "y"}})
	assert.True(g.Valid())

	g.Reset()
	assert.Equal(map[string]any{"a": nil, "b": nil}, g.Value())
	assert.Equal([]string{"a", "b"}, g.Names())
}

func TestControlString(t *testing.T) {

	assert := assert.New(t)

	c := NewControl("x", nil)
	assert.Equal("", c.String())
	c.SetValue("abc")
	assert.Equal("abc", c.String())
	c.SetValue([]string{"a", "b"})
	assert.Equal("a,b", c.String())
	assert.Equal([]string{"a", "b"}, c.Strings())
	c.SetValue("abc")
	assert.Empty(c.Strings())
}

func TestGroupValueCopiesSlices(t *testing.T) {

	g := NewGroup(NewControl("s", []string{"a"}))
	v := g.Value()["s"].([]string)
	v[0] = "changed"

	c, err := g.Get("s")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, c.Value())

	_, err = g.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownControl)
}

func TestControlPointer(t *testing.T) {

	assert := assert.New(t)

	c := NewControl("a", nil)
	assert.Nil(c.Pointer())

	c.SetValue("")
	if assert.NotNil(c.Pointer()) {
		assert.Equal("", *c.Pointer())
	}

	c.SetValue([]string{"x", "y"})
	assert.Equal("x,y", *c.Pointer())
}
