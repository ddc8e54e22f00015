package transfer

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jpegHeader is enough of a JFIF stream for MIME detection.
var jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00}

func newMemStore(t *testing.T) *Store {
	t.Helper()
	return New(memfs.New())
}

func TestStore_Move(t *testing.T) {
	s := newMemStore(t)
	require.NoError(t, util.WriteFile(s.Filesystem(), "/scratch/scan.jpg", []byte("page"), 0o644))

	n, err := s.Move("/scratch/scan.jpg", "/out/docs/result.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	data, err := util.ReadFile(s.Filesystem(), "/out/docs/result.jpg")
	require.NoError(t, err)
	assert.Equal(t, "page", string(data))

	_, err = s.Filesystem().Stat("/scratch/scan.jpg")
	assert.Error(t, err, "source should be gone")
}

func TestStore_MoveReplacesExisting(t *testing.T) {
	s := newMemStore(t)
	fs := s.Filesystem()
	require.NoError(t, util.WriteFile(fs, "/out.jpg", []byte("old"), 0o644))
	require.NoError(t, util.WriteFile(fs, "/scratch/scan.jpg", []byte("new"), 0o644))

	_, err := s.Move("/scratch/scan.jpg", "/out.jpg")
	require.NoError(t, err)

	data, err := util.ReadFile(fs, "/out.jpg")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestStore_MoveErrors(t *testing.T) {
	s := newMemStore(t)
	_, err := s.Move("/missing.jpg", "/out.jpg")
	assert.Error(t, err)

	require.NoError(t, s.EnsureDir("/dir"))
	require.NoError(t, util.WriteFile(s.Filesystem(), "/a.jpg", []byte("x"), 0o644))
	_, err = s.Move("/a.jpg", "/dir")
	assert.Error(t, err, "moving onto a directory must fail")
}

func TestStore_IsDirDestination(t *testing.T) {
	s := newMemStore(t)
	require.NoError(t, s.EnsureDir("/existing"))

	assert.True(t, s.IsDirDestination("/existing"))
	assert.True(t, s.IsDirDestination("/not/yet/"))
	assert.False(t, s.IsDirDestination("/file.jpg"))
	assert.False(t, s.IsDirDestination(""))
}

func TestStore_ScratchDir(t *testing.T) {
	s := newMemStore(t)
	a, err := s.ScratchDir("docscan-")
	require.NoError(t, err)
	b, err := s.ScratchDir("docscan-")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	info, err := s.Filesystem().Stat(a)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, util.WriteFile(s.Filesystem(), a+"/scan.jpg", []byte("x"), 0o644))
	require.NoError(t, s.RemoveAll(a))
	_, err = s.Filesystem().Stat(a)
	assert.Error(t, err)
}

func TestStore_Sniff(t *testing.T) {
	s := newMemStore(t)
	require.NoError(t, util.WriteFile(s.Filesystem(), "/scan.jpg", jpegHeader, 0o644))

	mt, err := s.Sniff("/scan.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mt)
}

func TestPagePath(t *testing.T) {
	tests := []struct {
		dst  string
		n    int
		want string
	}{
		{"/out/scan.jpg", 1, "/out/scan.jpg"},
		{"/out/scan.jpg", 2, "/out/scan-2.jpg"},
		{"/out/scan", 3, "/out/scan-3"},
		{"doc.pdf", 10, "doc-10.pdf"},
	}
	for _, tt := range tests {
		if got := PagePath(tt.dst, tt.n); got != tt.want {
			t.Errorf("PagePath(%q, %d): got %q, want %q", tt.dst, tt.n, got, tt.want)
		}
	}
}

func TestFreeName(t *testing.T) {
	fs := memfs.New()
	assert.Equal(t, "scan", FreeName(fs, "/out", "scan", ".jpg"))

	require.NoError(t, util.WriteFile(fs, "/out/scan.jpg", jpegHeader, 0o644))
	assert.Equal(t, "scan_1", FreeName(fs, "/out", "scan", ".jpg"))
	assert.Equal(t, "scan", FreeName(fs, "/out", "scan", ".png"), "other extensions do not collide")

	require.NoError(t, util.WriteFile(fs, "/out/scan_1.jpg", jpegHeader, 0o644))
	assert.Equal(t, "scan_2", FreeName(fs, "/out", "scan", ".jpg"))
}
