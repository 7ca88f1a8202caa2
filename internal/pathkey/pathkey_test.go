package pathkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/envexplorer/internal/pathkey"
)

func TestDepth(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, pathkey.Depth(""))
	assert.Equal(t, 2, pathkey.Depth("/prod"))
	assert.Equal(t, 4, pathkey.Depth("/prod/api/DB_HOST"))
}

func TestLevel(t *testing.T) {
	t.Parallel()

	name := "/prod/api/db/HOST"
	tests := []struct {
		level int
		want  string
	}{
		{-1, ""},
		{0, ""},
		{1, "/prod"},
		{2, "/prod/api"},
		{3, "/prod/api/db"},
		{4, name},
		{9, name},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, pathkey.Level(name, tt.level), "level %d", tt.level)
	}
}

func TestSegment(t *testing.T) {
	t.Parallel()

	seg, ok := pathkey.Segment("/prod/api/KEY", 2)
	assert.True(t, ok)
	assert.Equal(t, "api", seg)

	_, ok = pathkey.Segment("/prod", 2)
	assert.False(t, ok)

	_, ok = pathkey.Segment("/prod", -1)
	assert.False(t, ok)
}

func TestHasPrefix(t *testing.T) {
	t.Parallel()

	assert.True(t, pathkey.HasPrefix("/dev/api/KEY", "/dev/api"))
	assert.False(t, pathkey.HasPrefix("/dev/apiv2/KEY", "/dev/api"))
	assert.False(t, pathkey.HasPrefix("/dev/api", "/dev/api"))
}

func TestReplacePrefix(t *testing.T) {
	t.Parallel()

	got, ok := pathkey.ReplacePrefix("/prod/api/db/HOST", "/prod/api", "/prod/web")
	assert.True(t, ok)
	assert.Equal(t, "/prod/web/db/HOST", got)

	// Only the leading prefix changes, even when it repeats later in the name
	got, ok = pathkey.ReplacePrefix("/a/b/a/b/KEY", "/a/b", "/x")
	assert.True(t, ok)
	assert.Equal(t, "/x/a/b/KEY", got)

	got, ok = pathkey.ReplacePrefix("/dev/web/KEY", "/prod/api", "/prod/web")
	assert.False(t, ok)
	assert.Equal(t, "/dev/web/KEY", got)
}

func TestLocalAndJoin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "db/HOST", pathkey.Local("/prod/api/db/HOST", 3))
	assert.Equal(t, "", pathkey.Local("/prod/api", 3))
	assert.Equal(t, "/prod/api/db/HOST", pathkey.Join("/prod/api", "db/HOST"))
	assert.Equal(t, "/prod/api/HOST", pathkey.Join("/prod/api/", "/HOST"))
	assert.Equal(t, "/prod/api", pathkey.Join("/prod/api", ""))
}

func TestTrimWildcard(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/{env}/{service}", pathkey.TrimWildcard("/{env}/{service}/*"))
	assert.Equal(t, "/{env}/{service}", pathkey.TrimWildcard("/{env}/{service}"))
}
