package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_SetOnce(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.Set("b", "1"))
	require.NoError(t, c.Set("a", "2"))

	err := c.Set("b", "3")
	var exists *KeyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "b", exists.Key)

	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Equal(t, []string{"b", "a"}, c.Keys())
	assert.Equal(t, 2, c.Len())

	snap := c.Snapshot()
	snap["b"] = "changed"
	v, _ = c.Get("b")
	assert.Equal(t, "1", v)
}

func TestContext_SeedSorted(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.seed(map[string]string{"z": "1", "m": "2", "a": "3"}))
	assert.Equal(t, []string{"a", "m", "z"}, c.Keys())
}

func TestStage_Render(t *testing.T) {
	s := Stage{
		Name:        "S",
		Inputs:      []string{"a", "b"},
		Instruction: "A={a} B={b} again {a} literal {{.Topic}}",
	}
	assert.Equal(t, []string{"a", "b"}, s.Placeholders())

	c := NewContext()
	require.NoError(t, c.Set("a", "x"))
	_, err := s.Render(c)
	var missing *MissingContextKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "b", missing.Key)

	require.NoError(t, c.Set("b", "{a}"))
	got, err := s.Render(c)
	require.NoError(t, err)
	assert.Equal(t, "A=x B={a} again x literal {{.Topic}}", got)
}
