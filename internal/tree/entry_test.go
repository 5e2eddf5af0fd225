package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(e *Entry, name string) []string {
	var list []string
	for _, entry := range e.Entries() {
		if entry.Is(name) {
			list = append(list, entry.Value())
		}
	}
	return list
}

var addEntryTests = []struct {
	overwrite bool
	want      []string
}{
	{overwrite: true, want: []string{"2"}},
	{overwrite: false, want: []string{"1", "2"}},
}

func TestAddEntryOverwrite(t *testing.T) {
	for i, test := range addEntryTests {
		root := New("", 0, "", "")
		root.AddEntry("a", 1, "K", "1", nil, test.overwrite)
		root.AddEntry("b", 1, "k", "2", nil, test.overwrite)

		assert.Equal(t, test.want, values(root, "K"), "test %v", i)
	}
}

func TestAddEntrySectionsWithDifferentValues(t *testing.T) {
	root := New("", 0, "", "")

	a := root.AddEntry("", 1, "Frame", "a", New("", 1, "Frame", "a"), true)
	a.Section().AddEntry("", 1, "X", "1", nil, true)
	b := root.AddEntry("", 2, "Frame", "b", New("", 2, "Frame", "b"), true)
	b.Section().AddEntry("", 2, "X", "2", nil, true)

	require.Len(t, root.Entries(), 2)
	assert.Equal(t, "1", root.FindSection("Frame", "a").FindEntry("X", false, "").Value())
	assert.Equal(t, "2", root.FindSection("Frame", "B").FindEntry("X", false, "").Value())

	// same value merges into the existing section
	sec := New("", 3, "Frame", "A")
	sec.AddEntry("", 3, "Y", "3", nil, false)
	merged := root.AddEntry("", 3, "FRAME", "A", sec, true)

	assert.Same(t, a, merged)
	require.Len(t, root.Entries(), 2)
	assert.Equal(t, []string{"1"}, values(merged.Section(), "X"))
	assert.Equal(t, []string{"3"}, values(merged.Section(), "Y"))
}

func TestAddEntryLeafBecomesSection(t *testing.T) {
	root := New("", 0, "", "")
	root.AddEntry("", 1, "Screen", "x", nil, true)

	sec := New("", 2, "Screen", "y")
	sec.AddEntry("", 2, "Workspaces", "4", nil, false)
	entry := root.AddEntry("", 2, "Screen", "y", sec, true)

	require.Len(t, root.Entries(), 1)
	assert.Equal(t, "y", entry.Value())
	require.NotNil(t, entry.Section())
	assert.Equal(t, "4", entry.Section().FindEntry("Workspaces", false, "").Value())
}

func TestSetSection(t *testing.T) {
	entry := New("", 0, "S", "")
	old := New("", 0, "S", "")
	old.AddEntry("", 0, "A", "1", nil, false)
	old.AddEntry("", 0, "B", "1", nil, false)
	entry.SetSection(old, false)

	repl := New("", 0, "S", "")
	repl.AddEntry("", 0, "A", "2", nil, false)

	merge := entry.Clone()
	merge.SetSection(repl.Clone(), true)
	assert.Equal(t, []string{"2"}, values(merge.Section(), "A"))
	assert.Equal(t, []string{"1"}, values(merge.Section(), "B"))

	entry.SetSection(repl, false)
	assert.Same(t, repl, entry.Section())
	assert.Nil(t, entry.Section().FindEntry("B", false, ""))
}

func TestCopyTreeInto(t *testing.T) {
	dst := New("", 0, "", "")
	dst.AddEntry("", 0, "Keep", "1", nil, false)
	dst.AddEntry("", 0, "Replace", "old", nil, false)

	src := New("", 0, "", "")
	src.AddEntry("", 0, "Replace", "new", nil, false)
	sec := New("", 0, "Sub", "v")
	sec.AddEntry("", 0, "Deep", "x", nil, false)
	src.AddEntry("", 0, "Sub", "v", sec, false)

	dst.CopyTreeInto(src, true)

	assert.Equal(t, []string{"1"}, values(dst, "Keep"))
	assert.Equal(t, []string{"new"}, values(dst, "Replace"))

	copied := dst.FindSection("Sub", "v")
	require.NotNil(t, copied)
	assert.NotSame(t, sec, copied)

	// modifying the source afterwards must not leak into the copy
	sec.AddEntry("", 0, "Later", "y", nil, false)
	assert.Nil(t, copied.FindEntry("Later", false, ""))
}

func TestCopyTreeIntoItself(t *testing.T) {
	root := New("", 0, "", "")
	root.AddEntry("", 0, "A", "1", nil, false)
	sec := New("", 0, "S", "v")
	sec.AddEntry("", 0, "B", "2", nil, false)
	root.AddEntry("", 0, "S", "v", sec, false)

	want := root.Clone()
	root.CopyTreeInto(root, true)

	assert.True(t, want.Equal(root))
}

func TestFindEntry(t *testing.T) {
	root := New("", 0, "", "")
	sec := New("", 0, "Name", "val")
	root.AddEntry("", 0, "Name", "val", sec, false)
	leaf := root.AddEntry("", 0, "name", "leaf", nil, false)

	assert.Same(t, leaf, root.FindEntry("NAME", false, ""))
	assert.Equal(t, "val", root.FindEntry("NAME", true, "").Value())
	assert.Equal(t, "val", root.FindEntry("NAME", true, "VAL").Value())
	assert.Nil(t, root.FindEntry("NAME", true, "other"))
	assert.Nil(t, root.FindEntry("missing", true, ""))
	assert.Same(t, sec, root.FindSection("name", ""))
}

func TestCloneAndEqual(t *testing.T) {
	root := New("a", 1, "", "")
	sec := New("a", 2, "S", "v")
	sec.AddEntry("a", 3, "K", "1", nil, false)
	root.AddEntry("a", 2, "S", "v", sec, false)

	c := root.Clone()
	assert.True(t, root.Equal(c))
	assert.NotSame(t, root.Entries()[0], c.Entries()[0])

	c.FindSection("S", "v").FindEntry("K", false, "").SetValue("2")
	assert.False(t, root.Equal(c))
	assert.Equal(t, "1", root.FindSection("S", "v").FindEntry("K", false, "").Value())
}

func TestWalk(t *testing.T) {
	root := New("", 0, "", "")
	sec := New("", 0, "S", "")
	sec.AddEntry("", 0, "Inner", "x", nil, false)
	root.AddEntry("", 0, "A", "1", nil, false)
	root.AddEntry("", 0, "S", "", sec, false)

	var visited []string
	var depths []int
	err := root.Walk(func(depth int, e *Entry) error {
		visited = append(visited, e.Name())
		depths = append(depths, depth)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "S", "Inner"}, visited)
	assert.Equal(t, []int{0, 0, 1}, depths)
}
