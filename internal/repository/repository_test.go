package repository

import (
	"testing"
	"time"

	"soltip/internal/database"
	"soltip/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testScore mirrors the default production weights: 10 points per SOL
// received, 2 points per post.
func testScore(receivedLamports int64, postCount int) int64 {
	return 10*receivedLamports/models.LamportsPerSol + 2*int64(postCount)
}

// setupTestDB creates an in-memory SQLite database with the full schema.
// A single connection is forced because every :memory: connection is its
// own database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedPost(t *testing.T, db *gorm.DB, wallet, content string, at time.Time) *models.Post {
	t.Helper()

	repo := NewPostRepository(db, testScore)
	post := &models.Post{Wallet: wallet, Content: content, CreatedAt: at}
	require.NoError(t, repo.Create(t.Context(), post))
	return post
}
