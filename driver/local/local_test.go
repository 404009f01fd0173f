package local

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/dysodeng/cosfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRead(t *testing.T) {
	driver := New(t.TempDir(), "")
	ctx := context.Background()

	r, err := driver.Write(ctx, "docs/a.txt", []byte("hello"))
	require.NoError(t, err)
	require.True(t, r.OK)
	assert.Equal(t, int64(5), r.Data["filesize"])

	_, err = driver.Write(ctx, "docs/a.txt", []byte("again"))
	assert.True(t, errors.Is(err, fs.ErrExist))

	r, err = driver.Update(ctx, "docs/a.txt", []byte("updated"))
	require.NoError(t, err)
	assert.True(t, r.OK)

	contents, err := driver.Read(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "updated", string(contents))

	body, err := driver.ReadStream(ctx, "/docs/a.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "updated", string(data))

	r, err = driver.UpdateStream(ctx, "docs/b.txt", strings.NewReader("b"), cosfs.WithInsertOnly(true))
	require.NoError(t, err)
	assert.True(t, r.OK)
}

func TestWriteFailureLeavesNothing(t *testing.T) {
	driver := New(t.TempDir(), "")
	ctx := context.Background()

	broken := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errors.New("connection reset")))
	_, err := driver.WriteStream(ctx, "a.txt", broken)
	assert.Error(t, err)

	exists, err := driver.Has(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	r, err := driver.Write(ctx, "a.txt", []byte("complete"))
	require.NoError(t, err)
	assert.True(t, r.OK)
}

func TestPathStaysInRoot(t *testing.T) {
	root := t.TempDir()
	driver := New(root, "")

	_, err := driver.Write(context.Background(), "../../escape.txt", []byte("x"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)
}

func TestVisibility(t *testing.T) {
	driver := New(t.TempDir(), "")
	ctx := context.Background()

	_, err := driver.Write(ctx, "secret.txt", []byte("s"), cosfs.WithVisibility(cosfs.Private))
	require.NoError(t, err)

	v, ok, err := driver.GetVisibility(ctx, "secret.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cosfs.Private, v)

	ok, err = driver.SetVisibility(ctx, "secret.txt", cosfs.Public)
	require.NoError(t, err)
	assert.True(t, ok)

	v, _, err = driver.GetVisibility(ctx, "secret.txt")
	require.NoError(t, err)
	assert.Equal(t, cosfs.Public, v)
}

func TestMetadata(t *testing.T) {
	driver := New(t.TempDir(), "")
	ctx := context.Background()

	_, err := driver.Write(ctx, "page.html", []byte("<html><body>hi</body></html>"))
	require.NoError(t, err)

	size, ok, err := driver.GetSize(ctx, "page.html")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(28), size)

	mt, ok, err := driver.GetMimetype(ctx, "page.html")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(mt, "text/html"))

	ts, ok, err := driver.GetTimestamp(ctx, "page.html")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotZero(t, ts)

	_, ok, err = driver.GetSize(ctx, "missing.html")
	require.NoError(t, err)
	assert.False(t, ok)

	r, err := driver.GetMetadata(ctx, "missing.html")
	require.NoError(t, err)
	assert.False(t, r.OK)

	exists, err := driver.Has(ctx, "page.html")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = driver.Has(ctx, "missing.html")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRenameCopyDelete(t *testing.T) {
	driver := New(t.TempDir(), "")
	ctx := context.Background()

	_, err := driver.Write(ctx, "a.txt", []byte("a"))
	require.NoError(t, err)

	ok, err := driver.Copy(ctx, "a.txt", "copy/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = driver.Rename(ctx, "a.txt", "moved/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	exists, _ := driver.Has(ctx, "a.txt")
	assert.False(t, exists)

	contents, err := driver.Read(ctx, "copy/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a", string(contents))

	_, err = driver.Delete(ctx, "moved")
	assert.Error(t, err)

	ok, err = driver.Delete(ctx, "moved/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDirectories(t *testing.T) {
	driver := New(t.TempDir(), "")
	ctx := context.Background()

	r, err := driver.CreateDir(ctx, "photos")
	require.NoError(t, err)
	assert.True(t, r.OK)

	_, err = driver.CreateDir(ctx, "photos")
	assert.True(t, errors.Is(err, fs.ErrExist))

	_, err = driver.Write(ctx, "photos/1.jpg", []byte("1"))
	require.NoError(t, err)
	_, err = driver.DeleteDir(ctx, "photos")
	assert.Error(t, err)

	_, err = driver.DeleteDir(ctx, "/")
	assert.Error(t, err)

	_, err = driver.Delete(ctx, "photos/1.jpg")
	require.NoError(t, err)
	ok, err := driver.DeleteDir(ctx, "photos")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListContents(t *testing.T) {
	driver := New(t.TempDir(), "")
	ctx := context.Background()

	for _, p := range []string{"logs/a.log", "logs/b.log", "logs/archive/old.log", "top.txt"} {
		_, err := driver.Write(ctx, p, []byte(p))
		require.NoError(t, err)
	}

	infos, ok, err := driver.ListContents(ctx, "logs", false)
	require.NoError(t, err)
	require.True(t, ok)
	var paths []string
	for _, info := range infos {
		paths = append(paths, info.Path)
	}
	assert.Equal(t, []string{"logs/a.log", "logs/archive", "logs/b.log"}, paths)
	assert.True(t, infos[1].IsDir())

	infos, ok, err = driver.ListContents(ctx, "", true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, infos, 6)

	_, ok, err = driver.ListContents(ctx, "missing", false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestURL(t *testing.T) {
	driver := New(t.TempDir(), "https://static.example.com/")
	assert.Equal(t, "https://static.example.com/a/b.png", driver.URL("/a/b.png"))

	signed, err := driver.SignURL(context.Background(), "a/b.png", 0)
	require.NoError(t, err)
	assert.Equal(t, driver.URL("a/b.png"), signed)

	rel, err := driver.RelativePath("https://static.example.com/a/b.png")
	require.NoError(t, err)
	assert.Equal(t, "a/b.png", rel)

	assert.Equal(t, "a.txt", New(t.TempDir(), "").URL("a.txt"))
}
