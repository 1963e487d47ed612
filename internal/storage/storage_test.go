package storage

import (
	"cinesocial/backend/internal/models"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrConflict)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, offset(0, 20))
	assert.Equal(t, 0, offset(1, 20))
	assert.Equal(t, 40, offset(3, 20))
}

func TestCache_DisabledWithoutRedis(t *testing.T) {
	s := NewStorageService(nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.CacheSet(ctx, "k", []byte("v"), time.Minute), ErrCacheDisabled)
	assert.NoError(t, s.CacheDelete(ctx, "k"))
	_, err := s.CacheGet(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

// openTestDB connects to the database named by CINESOCIAL_TEST_DSN or skips.
func openTestDB(t *testing.T) *Service {
	t.Helper()
	dsn := os.Getenv("CINESOCIAL_TEST_DSN")
	if dsn == "" {
		t.Skip("CINESOCIAL_TEST_DSN not set")
	}
	db, err := OpenPostgres(dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewStorageService(db, nil)
}

func TestGetChatHistory_Postgres(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	a := &models.User{Name: "a", Email: "hist-a-" + time.Now().Format("150405.000000") + "@test", PasswordHash: "x"}
	b := &models.User{Name: "b", Email: "hist-b-" + time.Now().Format("150405.000000") + "@test", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, a))
	require.NoError(t, s.CreateUser(ctx, b))

	base := time.Now().UTC().Truncate(time.Second)
	msgs := []*models.ChatMessage{
		{SenderID: a.ID, ReceiverID: b.ID, Text: "1", Timestamp: base},
		{SenderID: b.ID, ReceiverID: a.ID, Text: "2", Timestamp: base},
		{SenderID: a.ID, ReceiverID: b.ID, Text: "3", Timestamp: base.Add(time.Second)},
	}
	for _, m := range msgs {
		require.NoError(t, s.SaveChatMessage(ctx, m))
	}

	page, err := s.GetChatHistory(ctx, b.ID, a.ID, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "2", page[0].Text)
	assert.Equal(t, "3", page[1].Text)

	before := base.Add(time.Second)
	older, err := s.GetChatHistory(ctx, a.ID, b.ID, 50, &before)
	require.NoError(t, err)
	require.Len(t, older, 2)
	assert.Equal(t, "1", older[0].Text)
}

func TestToggleReaction_Postgres(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	u := &models.User{Name: "r", Email: "react-" + time.Now().Format("150405.000000") + "@test", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, u))
	c := &models.Comment{UserID: u.ID, Name: u.Name, MovieID: "tt0113277", Text: "great"}
	require.NoError(t, s.CreateComment(ctx, c))

	steps := []struct {
		like            bool
		action          string
		likes, dislikes int
	}{
		{true, models.ReactionAdded, 1, 0},
		{false, models.ReactionSwitched, 0, 1},
		{false, models.ReactionRemoved, 0, 0},
	}
	for _, st := range steps {
		res, err := s.ToggleReaction(ctx, u.ID, c.ID, st.like)
		require.NoError(t, err)
		assert.Equal(t, st.action, res.Action)
		assert.Equal(t, st.likes, res.Likes)
		assert.Equal(t, st.dislikes, res.Dislikes)
	}

	_, err := s.ToggleReaction(ctx, u.ID, c.ID+1000000, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersExist_Postgres(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	u := &models.User{Name: "e", Email: "exist-" + time.Now().Format("150405.000000") + "@test", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, u))

	ok, err := s.UsersExist(ctx, u.ID, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UsersExist(ctx, u.ID, 424242424)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinkTelegramChat_MovesChatBetweenAccounts(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	stamp := time.Now().Format("150405.000000")
	chatID := time.Now().UnixNano()

	a := &models.User{Name: "a", Email: "tg-a-" + stamp + "@test", PasswordHash: "x"}
	b := &models.User{Name: "b", Email: "tg-b-" + stamp + "@test", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, a))
	require.NoError(t, s.CreateUser(ctx, b))

	require.NoError(t, s.LinkTelegramChat(ctx, a.ID, chatID))
	require.NoError(t, s.LinkTelegramChat(ctx, b.ID, chatID))

	gotA, err := s.GetUserByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := s.GetUserByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, gotA.TelegramChatID)
	require.NotNil(t, gotB.TelegramChatID)
	assert.Equal(t, chatID, *gotB.TelegramChatID)

	assert.ErrorIs(t, s.LinkTelegramChat(ctx, 424242424, chatID+1), ErrNotFound)
}
