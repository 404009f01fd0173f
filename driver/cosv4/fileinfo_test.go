package cosv4

import (
	"testing"

	"github.com/dysodeng/cosfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeListPage(t *testing.T) {
	page, err := decodeListPage(cosfs.Metadata{
		"context":  "2",
		"listover": true,
		"infos": []any{
			map[string]any{"name": "sub/", "ctime": 1.0, "mtime": 2.0},
			map[string]any{"name": "sub2", "ctime": 1.0},
			map[string]any{"name": "a.txt", "filesize": 3.0, "sha": "abc", "ctime": 1.0, "authority": "eWPrivateRPublic"},
		},
	})
	require.NoError(t, err)
	assert.True(t, page.ListOver)
	assert.Equal(t, "2", page.Context)
	require.Len(t, page.Infos, 3)

	sub := page.Infos[0].objectInfo("a/dir")
	assert.Equal(t, "a/dir/sub", sub.Path)
	assert.True(t, sub.IsDir())
	assert.Equal(t, int64(2), sub.Timestamp)

	sub2 := page.Infos[1].objectInfo("")
	assert.Equal(t, "sub2", sub2.Path)
	assert.True(t, sub2.IsDir())

	file := page.Infos[2].objectInfo("a/dir")
	assert.Equal(t, "a/dir/a.txt", file.Path)
	assert.False(t, file.IsDir())
	assert.Equal(t, int64(3), file.Size)
	assert.Equal(t, cosfs.Public, file.Visibility)
}
