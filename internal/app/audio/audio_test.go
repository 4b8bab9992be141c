package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToMP3IfNeededSkipsSupportedFormats(t *testing.T) {
	for _, path := range []string{"/tmp/a.mp3", "/tmp/b.wav", "/tmp/c.MP3"} {
		converted, err := ConvertToMP3IfNeeded(context.Background(), path)
		require.NoError(t, err)
		assert.Empty(t, converted, "no conversion expected for %s", path)
	}
}
