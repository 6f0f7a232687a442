package postgres

import (
	"context"
	"testing"

	"pandore/internal/domain/entity"
	"pandore/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackRepository_PersistsRightsData(t *testing.T) {
	db := newTestDB(t)
	repo := NewTrackRepository(db)
	ctx := context.Background()
	artist := createTestUser(t, db, "artist@example.com", true)

	track := &entity.Track{
		ArtistID:   artist.ID,
		ArtistName: artist.DisplayArtistName(),
		Title:      "Night Drive",
		Price:      1299,
		Status:     entity.TrackStatusDraft,
		Mastering:  &entity.Mastering{Engineer: "Bob", Studio: "Abbey"},
		Splits: []entity.Split{
			{Party: "Ada", Role: "writer", Percent: 60},
			{Party: "Bob", Role: "producer", Percent: 40},
		},
	}
	require.NoError(t, repo.Create(ctx, track))

	found, err := repo.FindByID(ctx, track.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Mastering)
	assert.Equal(t, "Abbey", found.Mastering.Studio)
	assert.Equal(t, track.Splits, found.Splits)

	found.Title = "Night Drive (Remaster)"
	found.Mastering = nil
	require.NoError(t, repo.Update(ctx, found))

	updated, err := repo.FindByID(ctx, track.ID)
	require.NoError(t, err)
	assert.Equal(t, "Night Drive (Remaster)", updated.Title)
	assert.Nil(t, updated.Mastering)
}

func TestTrackRepository_ListFiltersAndCounters(t *testing.T) {
	db := newTestDB(t)
	repo := NewTrackRepository(db)
	ctx := context.Background()
	artist := createTestUser(t, db, "artist@example.com", true)

	first := createTestTrack(t, db, artist, nil, "One")
	createTestTrack(t, db, artist, nil, "Two")
	jazz := &entity.Track{ArtistID: artist.ID, ArtistName: "x", Title: "Three", Price: 100, Genre: "jazz", Status: entity.TrackStatusPublished}
	require.NoError(t, repo.Create(ctx, jazz))

	all, err := repo.List(ctx, repository.TrackFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	jazzOnly, err := repo.List(ctx, repository.TrackFilter{Genre: "jazz"})
	require.NoError(t, err)
	require.Len(t, jazzOnly, 1)
	assert.Equal(t, jazz.ID, jazzOnly[0].ID)

	paged, err := repo.List(ctx, repository.TrackFilter{Limit: 1, Skip: 1})
	require.NoError(t, err)
	assert.Len(t, paged, 1)

	require.NoError(t, repo.IncrementLikes(ctx, first.ID, 1))
	require.NoError(t, repo.IncrementLikes(ctx, first.ID, 1))
	require.NoError(t, repo.IncrementLikes(ctx, first.ID, -1))
	require.NoError(t, repo.IncrementSales(ctx, first.ID))

	found, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.LikesCount)
	assert.Equal(t, int64(1), found.SalesCount)

	assert.ErrorIs(t, repo.IncrementLikes(ctx, uuid.New(), 1), repository.ErrTrackNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), repository.ErrTrackNotFound)
	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.FindByID(ctx, first.ID)
	assert.ErrorIs(t, err, repository.ErrTrackNotFound)
}

func TestAlbumRepository_TrackIDsDerivedFromTracks(t *testing.T) {
	db := newTestDB(t)
	repo := NewAlbumRepository(db)
	ctx := context.Background()
	artist := createTestUser(t, db, "artist@example.com", true)

	album := &entity.Album{ArtistID: artist.ID, ArtistName: artist.DisplayArtistName(), Title: "LP", Price: 4999}
	require.NoError(t, repo.Create(ctx, album))
	assert.Empty(t, album.TrackIDs)

	first := createTestTrack(t, db, artist, &album.ID, "Side A")
	second := createTestTrack(t, db, artist, &album.ID, "Side B")
	createTestTrack(t, db, artist, nil, "Single")

	found, err := repo.FindByID(ctx, album.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, found.TrackIDs)

	listed, err := repo.List(ctx, &artist.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Len(t, listed[0].TrackIDs, 2)

	require.NoError(t, repo.Delete(ctx, album.ID))
	_, err = repo.FindByID(ctx, album.ID)
	assert.ErrorIs(t, err, repository.ErrAlbumNotFound)

	detached, err := NewTrackRepository(db).FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.AlbumID)
}

func TestPlaylistRepository_KeepsOrderAndDuplicates(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "listener@example.com", false)

	playlist := &entity.Playlist{UserID: user.ID, Name: "Mix"}
	require.NoError(t, repo.Create(ctx, playlist))

	a, b := uuid.New(), uuid.New()
	require.NoError(t, repo.UpdateTracks(ctx, playlist.ID, []uuid.UUID{b, a, b}))

	found, err := repo.FindByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b, a, b}, found.TrackIDs)

	mine, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	assert.ErrorIs(t, repo.UpdateTracks(ctx, uuid.New(), nil), repository.ErrPlaylistNotFound)
	require.NoError(t, repo.Delete(ctx, playlist.ID))
	assert.ErrorIs(t, repo.Delete(ctx, playlist.ID), repository.ErrPlaylistNotFound)
}

func TestLikeRepository_InsertIfAbsentIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "listener@example.com", false)
	itemID := uuid.New()

	inserted, err := repo.InsertIfAbsent(ctx, &entity.Like{UserID: user.ID, ItemType: entity.ItemTypeTrack, ItemID: itemID})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(ctx, &entity.Like{UserID: user.ID, ItemType: entity.ItemTypeTrack, ItemID: itemID})
	require.NoError(t, err)
	assert.False(t, inserted)

	albumLike, err := repo.InsertIfAbsent(ctx, &entity.Like{UserID: user.ID, ItemType: entity.ItemTypeAlbum, ItemID: itemID})
	require.NoError(t, err)
	assert.True(t, albumLike)

	trackType := entity.ItemTypeTrack
	tracksOnly, err := repo.ListByUser(ctx, user.ID, &trackType)
	require.NoError(t, err)
	assert.Len(t, tracksOnly, 1)

	removed, err := repo.Delete(ctx, user.ID, entity.ItemTypeTrack, itemID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, user.ID, entity.ItemTypeTrack, itemID)
	require.NoError(t, err)
	assert.False(t, removed)
}
