package cosfs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dysodeng/cosfs"
	"github.com/dysodeng/cosfs/driver/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote:" + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPut(t *testing.T) {
	fsys := local.New(t.TempDir(), "")
	ctx := context.Background()

	r, err := cosfs.Put(ctx, fsys, "a.txt", strings.NewReader("first"))
	require.NoError(t, err)
	assert.True(t, r.OK)

	r, err = cosfs.Put(ctx, fsys, "a.txt", strings.NewReader("second"))
	require.NoError(t, err)
	assert.True(t, r.OK)

	contents, err := fsys.Read(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", string(contents))
}

func TestPutRemoteFileAs(t *testing.T) {
	remote := newRemote(t)
	fsys := local.New(t.TempDir(), "")
	ctx := context.Background()

	path, ok, err := cosfs.PutRemoteFileAs(ctx, fsys, remote.Client(), "/avatars/", remote.URL+"/u/1.png", "me.png")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "avatars/me.png", path)

	contents, err := fsys.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "remote:/u/1.png", string(contents))

	_, ok, err = cosfs.PutRemoteFileAs(ctx, fsys, remote.Client(), "avatars", remote.URL+"/missing.png", "x.png")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestPutRemoteFile(t *testing.T) {
	remote := newRemote(t)
	fsys := local.New(t.TempDir(), "")
	ctx := context.Background()

	u := remote.URL + "/img/cat.jpg?size=large"
	path, ok, err := cosfs.PutRemoteFile(ctx, fsys, nil, "fetched", u)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fetched/"+cosfs.RemoteFileName(u), path)
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	again, _, err := cosfs.PutRemoteFile(ctx, fsys, nil, "fetched", u)
	require.NoError(t, err)
	assert.Equal(t, path, again)
}

func TestRemoteFileName(t *testing.T) {
	a := cosfs.RemoteFileName("https://example.com/a.gif")
	b := cosfs.RemoteFileName("https://example.com/b.gif")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, ".gif"))
	assert.Equal(t, a, cosfs.RemoteFileName("https://example.com/a.gif"))
	assert.Len(t, cosfs.RemoteFileName("https://example.com/noext"), 36)
}
