package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"github.com/vidtube/backend/internal/db/dbtest"
	"github.com/vidtube/backend/internal/lib/logger"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

var _ Store = (*dbtest.Memory)(nil)

// fakeUploader hands back a deterministic URL per file, or the error
// configured for the kind.
type fakeUploader struct {
	mu    sync.Mutex
	fail  map[media.Kind]error
	calls []media.Kind
}

func (f *fakeUploader) Upload(_ context.Context, localPath string, kind media.Kind) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, kind)
	if err := f.fail[kind]; err != nil {
		return "", err
	}
	return fmt.Sprintf("https://cdn.test/%s/%s", kind, filepath.Base(localPath)), nil
}

func (f *fakeUploader) failOn(kind media.Kind, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail == nil {
		f.fail = make(map[media.Kind]error)
	}
	f.fail[kind] = err
}

func testTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     15 * time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    24 * time.Hour,
	}
}

type testEnv struct {
	store    *dbtest.Memory
	uploader *fakeUploader
	tokens   *TokenService
	accounts *AccountService
	videos   *VideoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := dbtest.NewMemory()
	uploader := &fakeUploader{}
	tokens, err := NewTokenService(store, testTokenConfig())
	require.NoError(t, err)

	log := logger.Discard()
	return &testEnv{
		store:    store,
		uploader: uploader,
		tokens:   tokens,
		accounts: NewAccountService(log, store, tokens, uploader),
		videos:   NewVideoService(log, store, store, uploader),
	}
}

// seedUser stores an account directly, skipping the expensive hash cost used
// by Register.
func (e *testEnv) seedUser(t *testing.T, password string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user, err := e.store.CreateUser(context.Background(), model.NewUser{
		Username:     gofakeit.Username(),
		Email:        gofakeit.Email(),
		Fullname:     gofakeit.Name(),
		Avatar:       gofakeit.URL(),
		PasswordHash: string(hash),
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) seedVideo(t *testing.T, owner string, published bool) *model.Video {
	t.Helper()

	video, err := e.store.CreateVideo(context.Background(), model.NewVideo{
		Owner:       owner,
		VideoFile:   gofakeit.URL(),
		Thumbnail:   gofakeit.URL(),
		Title:       gofakeit.Sentence(3),
		Description: gofakeit.Sentence(8),
		Duration:    gofakeit.Float64Range(1, 600),
		IsPublished: published,
	})
	require.NoError(t, err)
	return video
}
