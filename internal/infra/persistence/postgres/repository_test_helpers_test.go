package postgres

import (
	"context"
	"testing"

	"pandore/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the production schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(context.Background(), db))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, artist bool) *entity.User {
	t.Helper()

	user := &entity.User{Email: email, Name: "Test " + email, Role: entity.RoleListener}
	if artist {
		user.ApplyArtistName("Artist " + email)
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))

	return user
}

func createTestTrack(t *testing.T, db *gorm.DB, artist *entity.User, albumID *uuid.UUID, title string) *entity.Track {
	t.Helper()

	track := &entity.Track{
		ArtistID:   artist.ID,
		ArtistName: artist.DisplayArtistName(),
		AlbumID:    albumID,
		Title:      title,
		Price:      999,
		Genre:      "electronic",
		Status:     entity.TrackStatusPublished,
	}
	require.NoError(t, NewTrackRepository(db).Create(context.Background(), track))

	return track
}
