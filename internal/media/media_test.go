package media

import (
	"context"
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	err   error
	key   string
	ctype string
	body  []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.key = aws.ToString(in.Key)
	f.ctype = aws.ToString(in.ContentType)
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestUploadRemovesFileOnSuccess(t *testing.T) {
	client := &fakeS3{}
	u := newS3Uploader(client, "vidtube", "http://cdn.local/")
	u.now = func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC) }

	p := writeTemp(t, "clip.mp4", "video-bytes")
	url, err := u.Upload(context.Background(), p, KindVideo)
	require.NoError(t, err)

	assert.NoFileExists(t, p)
	assert.Regexp(t, regexp.MustCompile(`^videos/2026/03/07/[0-9a-f-]{36}\.mp4$`), client.key)
	assert.Equal(t, "http://cdn.local/vidtube/"+client.key, url)
	assert.Equal(t, "video-bytes", string(client.body))
}

func TestUploadRemovesFileOnFailure(t *testing.T) {
	u := newS3Uploader(&fakeS3{err: errors.New("bucket gone")}, "vidtube", "http://cdn.local")

	p := writeTemp(t, "clip.mp4", "video-bytes")
	_, err := u.Upload(context.Background(), p, KindVideo)
	require.Error(t, err)
	assert.NoFileExists(t, p)
}

func TestUploadRejectsNonImageForImageKinds(t *testing.T) {
	client := &fakeS3{}
	u := newS3Uploader(client, "vidtube", "http://cdn.local")

	p := writeTemp(t, "avatar.png", "definitely not a png")
	_, err := u.Upload(context.Background(), p, KindAvatar)
	assert.ErrorIs(t, err, ErrNotImage)
	assert.NoFileExists(t, p)
	assert.Empty(t, client.key)
}

func TestNormalizeImageDownscales(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, imaging.Save(imaging.New(2560, 640, color.NRGBA{R: 200, G: 40, B: 40, A: 255}), p))

	require.NoError(t, NormalizeImage(p))

	img, err := imaging.Open(p)
	require.NoError(t, err)
	assert.Equal(t, 1280, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
}

func TestNormalizeImageKeepsSmallImages(t *testing.T) {
	p := filepath.Join(t.TempDir(), "thumb.jpg")
	require.NoError(t, imaging.Save(imaging.New(640, 360, color.NRGBA{R: 200, G: 40, B: 40, A: 255}), p))
	before, err := os.ReadFile(p)
	require.NoError(t, err)

	require.NoError(t, NormalizeImage(p))

	after, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTempDirNewPath(t *testing.T) {
	dir := TempDir(filepath.Join(t.TempDir(), "nested", "temp"))

	p, err := dir.NewPath("../../etc/Passwd.PNG")
	require.NoError(t, err)
	assert.Equal(t, string(dir), filepath.Dir(p))
	assert.Equal(t, ".png", filepath.Ext(p))
	assert.DirExists(t, string(dir))

	Remove(p)
	Remove("")
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey(KindThumbnail, ".jpg", time.Date(2025, 12, 1, 23, 0, 0, 0, time.UTC))
	assert.Regexp(t, `^thumbnails/2025/12/01/[0-9a-f-]{36}\.jpg$`, key)
}

func TestUploadImageSetsContentType(t *testing.T) {
	client := &fakeS3{}
	u := newS3Uploader(client, "vidtube", "http://cdn.local")

	p := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, imaging.Save(imaging.New(64, 64, color.White), p))

	url, err := u.Upload(context.Background(), p, KindAvatar)
	require.NoError(t, err)
	assert.Equal(t, "image/png", client.ctype)
	assert.Contains(t, url, "/vidtube/avatars/")
	assert.NoFileExists(t, p)
}
