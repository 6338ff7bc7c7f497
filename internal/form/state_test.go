package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FlattensNestedSeed(t *testing.T) {
	t.Parallel()

	s, err := New(map[string]any{
		"name": "vm1",
		"sink": map[string]any{"name": "default", "kind": "Broker"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "sink.kind", "sink.name"}, s.Paths())
	assert.Equal(t, "default", s.String("sink.name"))
	assert.Equal(t, "default", s.InitialString("sink.name"))
	assert.False(t, s.Touched("sink.name"), "seeded values are not touched")
}

func TestNew_RejectsEmptySegment(t *testing.T) {
	t.Parallel()

	_, err := New(map[string]any{"sink..name": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty segment")
}

func TestSet_MarksTouchedAndResetsValidated(t *testing.T) {
	t.Parallel()

	s, err := New(nil)
	require.NoError(t, err)

	require.NoError(t, s.Set("flavor.memory", "2Gi"))
	s.MarkValidated("flavor.memory")
	assert.True(t, s.Validated("flavor.memory"))

	require.NoError(t, s.Set("flavor.memory", "4Gi"))
	assert.True(t, s.Touched("flavor.memory"))
	assert.False(t, s.Validated("flavor.memory"), "changing a value invalidates it")
	assert.Equal(t, "4Gi", s.String("flavor.memory"))
}

func TestSet_InvalidPath(t *testing.T) {
	t.Parallel()

	s, err := New(nil)
	require.NoError(t, err)

	assert.Error(t, s.Set("", "x"))
	assert.Error(t, s.Set("a.", "x"))
}

func TestSetUntouched(t *testing.T) {
	t.Parallel()

	s, err := New(nil)
	require.NoError(t, err)

	require.NoError(t, s.SetUntouched("bootSource", "net0"))
	assert.Equal(t, "net0", s.String("bootSource"))
	assert.False(t, s.Touched("bootSource"))
}

func TestSet_NilRemovesValue(t *testing.T) {
	t.Parallel()

	s, err := New(map[string]any{"template": "fedora"})
	require.NoError(t, err)

	require.NoError(t, s.Set("template", nil))
	_, ok := s.Get("template")
	assert.False(t, ok)
	assert.True(t, s.Touched("template"))
}

func TestClear_RemovesDescendants(t *testing.T) {
	t.Parallel()

	s, err := New(map[string]any{
		"sink":     map[string]any{"name": "a", "kind": "Broker", "apiVersion": "eventing.knative.dev/v1"},
		"sinkType": "resource",
	})
	require.NoError(t, err)
	s.Touch("sink.name")
	s.AddError("sink.kind", "bad")

	s.Clear("sink")

	assert.Equal(t, []string{"sinkType"}, s.Paths())
	assert.False(t, s.Touched("sink.name"))
	assert.Empty(t, s.ErrorsFor("sink.kind"))
}

func TestClear_DoesNotMatchSiblingPrefix(t *testing.T) {
	t.Parallel()

	s, err := New(map[string]any{"sink.name": "a", "sinkType": "uri"})
	require.NoError(t, err)

	s.Clear("sink")

	assert.Equal(t, "uri", s.String("sinkType"))
}

func TestErrors(t *testing.T) {
	t.Parallel()

	s, err := New(nil)
	require.NoError(t, err)

	s.SetErrors("name", "required")
	s.AddError("name", "too long")
	assert.Equal(t, []string{"required", "too long"}, s.ErrorsFor("name"))

	s.ClearErrors("name")
	assert.Empty(t, s.ErrorsFor("name"))
}

func TestHas(t *testing.T) {
	t.Parallel()

	s, err := New(map[string]any{"empty": "", "keys": []string{}, "name": "x"})
	require.NoError(t, err)

	assert.True(t, s.Has("name"))
	assert.False(t, s.Has("empty"))
	assert.False(t, s.Has("keys"))
	assert.False(t, s.Has("missing"))
}

func TestProject_KeySetEqualsRequest(t *testing.T) {
	t.Parallel()

	s, err := New(map[string]any{"name": "vm1", "extra": "ignored"})
	require.NoError(t, err)

	got := s.Project([]string{"name", "description"})

	want := map[string]any{"name": "vm1", "description": nil}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Project() mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	t.Parallel()

	s, err := New(map[string]any{"keys": []string{"a"}})
	require.NoError(t, err)

	snap := s.Snapshot()
	snap["keys"].([]string)[0] = "changed"

	got, _ := s.Get("keys")
	assert.Equal(t, []string{"a"}, got)
}

func TestNested(t *testing.T) {
	t.Parallel()

	type nic struct {
		Name string `json:"name"`
	}

	got, err := Nested(map[string]any{
		"name":          "vm1",
		"flavor.memory": "2Gi",
		"flavor.cpu":    nil,
		"networks":      []nic{{Name: "net0"}},
	})
	require.NoError(t, err)

	want := map[string]any{
		"name":     "vm1",
		"flavor":   map[string]any{"memory": "2Gi"},
		"networks": []any{map[string]any{"name": "net0"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Nested() mismatch (-want +got):\n%s", diff)
	}
}

func TestNested_ConflictingPaths(t *testing.T) {
	t.Parallel()

	_, err := Nested(map[string]any{"flavor": "tiny", "flavor.cpu": "1"})
	require.Error(t, err)
}
