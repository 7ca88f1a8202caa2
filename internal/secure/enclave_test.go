package secure

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"trailing newline", "s3cr3t\n", "s3cr3t", nil},
		{"no newline", "s3cr3t", "s3cr3t", nil},
		{"surrounding space", "  s3cr3t \r\n", "s3cr3t", nil},
		{"only first line", "first\nsecond\n", "first", nil},
		{"empty", "", "", ErrEmpty},
		{"blank line", "   \n", "", ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf, err := ReadLine(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer buf.Destroy()

			got, err := buf.Reveal()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewSecureBufferWipesSource(t *testing.T) {
	t.Parallel()

	src := []byte("super-secret-data")
	buf, err := NewSecureBuffer(src)
	require.NoError(t, err)
	defer buf.Destroy()

	assert.Equal(t, make([]byte, len(src)), src, "source should be zeroed")

	locked, err := buf.Open()
	require.NoError(t, err)
	defer locked.Destroy()
	assert.Equal(t, "super-secret-data", string(locked.Bytes()))
}

func TestRevealSurvivesDestroyOfLockedBuffer(t *testing.T) {
	t.Parallel()

	buf, err := FromString("hunter2")
	require.NoError(t, err)
	defer buf.Destroy()

	first, err := buf.Reveal()
	require.NoError(t, err)
	second, err := buf.Reveal()
	require.NoError(t, err)

	assert.Equal(t, "hunter2", first)
	assert.Equal(t, first, second)
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	buf, err := FromString("gone")
	require.NoError(t, err)

	buf.Destroy()
	buf.Destroy()

	_, err = buf.Open()
	assert.Error(t, err)
	_, err = buf.Reveal()
	assert.Error(t, err)
}

func TestConcurrentReveal(t *testing.T) {
	t.Parallel()

	buf, err := FromString("concurrent-secret")
	require.NoError(t, err)
	defer buf.Destroy()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := buf.Reveal()
			assert.NoError(t, err)
			assert.Equal(t, "concurrent-secret", got)
		}()
	}
	wg.Wait()
}
