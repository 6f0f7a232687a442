package impl

import (
	"context"
	"testing"

	"pandore/internal/domain/entity"
	domainerrors "pandore/internal/domain/errors"
	"pandore/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLikeService(env *testEnv) usecase.LikeUsecase {
	return NewLikeService(LikeServiceParams{
		TxManager: env.txManager,
		LikeRepo:  env.likeRepo,
		Logger:    newDiscardLogger(),
	})
}

func TestLikeService_LikeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLikeService(env)
	ctx := context.Background()

	artist := env.createUser(t, "artist@example.com", "Artist")
	fan := env.createUser(t, "fan@example.com", "")
	track := env.createTrack(t, artist, 199)

	first, err := srv.Like(ctx, fan.ID, entity.ItemTypeTrack, track.ID)
	require.NoError(t, err)
	assert.Equal(t, "Liked", first.Message)
	assert.True(t, first.Liked)

	again, err := srv.Like(ctx, fan.ID, entity.ItemTypeTrack, track.ID)
	require.NoError(t, err)
	assert.Equal(t, "Already liked", again.Message)
	assert.True(t, again.Liked)

	stored, err := env.trackRepo.FindByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.LikesCount)

	likes, err := srv.ListLikes(ctx, fan.ID, nil)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, track.ID, likes[0].ItemID)
}

func TestLikeService_UnlikeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLikeService(env)
	ctx := context.Background()

	artist := env.createUser(t, "artist@example.com", "Artist")
	fan := env.createUser(t, "fan@example.com", "")
	album := env.createAlbum(t, artist, 999)

	_, err := srv.Like(ctx, fan.ID, entity.ItemTypeAlbum, album.ID)
	require.NoError(t, err)

	out, err := srv.Unlike(ctx, fan.ID, entity.ItemTypeAlbum, album.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unliked", out.Message)
	assert.False(t, out.Liked)

	out, err = srv.Unlike(ctx, fan.ID, entity.ItemTypeAlbum, album.ID)
	require.NoError(t, err)
	assert.Equal(t, "Not liked", out.Message)

	stored, err := env.albumRepo.FindByID(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.LikesCount)
}

func TestLikeService_CountsAcrossUsers(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLikeService(env)
	ctx := context.Background()

	artist := env.createUser(t, "artist@example.com", "Artist")
	track := env.createTrack(t, artist, 199)

	for i := range 3 {
		fan := env.createUser(t, uuid.NewString()+"@example.com", "")
		_, err := srv.Like(ctx, fan.ID, entity.ItemTypeTrack, track.ID)
		require.NoError(t, err, "like %d", i)
	}

	stored, err := env.trackRepo.FindByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.LikesCount)

	trackType := entity.ItemTypeTrack
	albumType := entity.ItemTypeAlbum
	fan := env.createUser(t, "filter@example.com", "")
	_, err = srv.Like(ctx, fan.ID, entity.ItemTypeTrack, track.ID)
	require.NoError(t, err)

	likes, err := srv.ListLikes(ctx, fan.ID, &trackType)
	require.NoError(t, err)
	assert.Len(t, likes, 1)

	likes, err = srv.ListLikes(ctx, fan.ID, &albumType)
	require.NoError(t, err)
	assert.Empty(t, likes)
}

func TestLikeService_Errors(t *testing.T) {
	env := newTestEnv(t)
	srv := newTestLikeService(env)
	ctx := context.Background()
	fan := env.createUser(t, "fan@example.com", "")

	_, err := srv.Like(ctx, fan.ID, entity.ItemTypeTrack, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrTrackNotFound)

	_, err = srv.Like(ctx, fan.ID, entity.ItemTypeAlbum, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrAlbumNotFound)

	_, err = srv.Like(ctx, fan.ID, entity.ItemType("artist"), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	likes, err := srv.ListLikes(ctx, fan.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, likes)
}
