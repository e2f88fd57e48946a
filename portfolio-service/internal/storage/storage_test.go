package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		spec    string
		want    interface{}
		wantErr bool
	}{
		{"memory", "memory", &MemoryStore{}, false},
		{"memory upper case", "MEMORY", &MemoryStore{}, false},
		{"file with dir", "file:" + filepath.Join(dir, "a"), &FileStore{}, false},
		{"bare path", filepath.Join(dir, "b"), &FileStore{}, false},
		{"unsupported", "db:postgres", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
		})
	}
}

func testStore(t *testing.T, s Store) {
	_, err := s.Get("portfolio-stocks")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("portfolio-stocks", []byte(`[{"symbol":"CASH"}]`)))
	got, err := s.Get("portfolio-stocks")
	require.NoError(t, err)
	assert.Equal(t, `[{"symbol":"CASH"}]`, string(got))

	require.NoError(t, s.Set("portfolio-stocks", []byte(`[]`)))
	got, err = s.Get("portfolio-stocks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, s.Set("k", value))
	value[0] = 'x'

	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[0] = 'y'
	again, _ := s.Get("k")
	assert.Equal(t, "abc", string(again))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "dir"))
	require.NoError(t, err)
	testStore(t, s)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set("portfolio-stocks", []byte(`[1,2,3]`)))

	_, err = os.Stat(filepath.Join(dir, "portfolio-stocks.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "portfolio-stocks.json.tmp"))
	assert.True(t, os.IsNotExist(err))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := second.Get("portfolio-stocks")
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3]`, string(got))
}

func TestFileStore_SanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set("../escape", []byte(`{}`)))
	_, err = os.Stat(filepath.Join(dir, "__escape.json"))
	assert.NoError(t, err)
}

func TestReadOnly_DiscardsWrites(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, fs.Set("portfolio-stocks", []byte(`[]`)))

	ro := ReadOnly(fs)
	got, err := ro.Get("portfolio-stocks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, ro.Set("portfolio-stocks", []byte(`[1]`)))
	require.NoError(t, ro.Set("other", []byte(`{}`)))

	got, err = fs.Get("portfolio-stocks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
	_, err = fs.Get("other")
	assert.ErrorIs(t, err, ErrNotFound)
}
