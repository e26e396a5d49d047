package linecount

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLabels(t *testing.T) {

	path := filepath.Join(t.TempDir(), "labels.txt")
	require.NoError(t, os.WriteFile(path, []byte("person\n  car \n\nbus\n"), 0o644))

	labels, err := LoadLabels(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"person", "car", "bus"}, labels)
}

func TestLoadLabelsErrors(t *testing.T) {

	dir := t.TempDir()

	_, err := LoadLabels(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("\n\n"), 0o644))

	_, err = LoadLabels(empty)
	assert.ErrorContains(t, err, "no labels")
}

func TestCOCOLabels(t *testing.T) {

	labels := COCOLabels()

	assert.Len(t, labels, 80)
	assert.Equal(t, "person", labels[0])
	assert.Equal(t, "toothbrush", labels[79])
}
