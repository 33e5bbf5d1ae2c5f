package labelmap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "label_map.json")
	want := LabelMap{0: "alice", 1: "bob"}

	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	name, ok := got.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "bob", name)

	_, ok = got.Lookup(2)
	assert.False(t, ok)
}

func TestFileFormatUsesStringKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "label_map.json")
	require.NoError(t, Save(path, LabelMap{0: "alice", 1: "bob"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]string{"0": "alice", "1": "bob"}, raw)
}

func TestLoadFileWrittenByOtherTools(t *testing.T) {
	path := filepath.Join(t.TempDir(), "label_map.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1": "bob", "0": "alice"}`), 0644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, m.Names())
	assert.NoError(t, m.Validate())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.True(t, os.IsNotExist(err))

	badKey := filepath.Join(dir, "bad_key.json")
	require.NoError(t, os.WriteFile(badKey, []byte(`{"zero": "alice"}`), 0644))
	_, err = Load(badKey)
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte(`not json`), 0644))
	_, err = Load(garbage)
	assert.Error(t, err)
}

func TestLoadRejectsSparseOrNegativeLabels(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"gap", `{"0": "alice", "5": "bob"}`},
		{"negative", `{"0": "alice", "-1": "ghost"}`},
		{"sparse and negative", `{"0": "alice", "5": "bob", "-1": "ghost"}`},
		{"not starting at zero", `{"1": "bob"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "label_map.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			m, err := Load(path)
			assert.ErrorIs(t, err, ErrNotDense)
			assert.Nil(t, m)
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "label_map.json")
	require.NoError(t, Save(path, LabelMap{0: "alice", 1: "bob", 2: "carol"}))
	require.NoError(t, Save(path, LabelMap{0: "dave"}))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, LabelMap{0: "dave"}, m)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, LabelMap{}.Validate())
	assert.NoError(t, FromNames([]string{"a", "b", "c"}).Validate())
	assert.ErrorIs(t, LabelMap{0: "a", 2: "c"}.Validate(), ErrNotDense)
	assert.ErrorIs(t, LabelMap{1: "a"}.Validate(), ErrNotDense)
	assert.ErrorIs(t, LabelMap{-1: "ghost", 0: "a"}.Validate(), ErrNotDense)
}

func TestFromNames(t *testing.T) {
	m := FromNames([]string{"alice", "bob"})
	assert.Equal(t, LabelMap{0: "alice", 1: "bob"}, m)
	assert.Equal(t, []int{0, 1}, m.Labels())
}
