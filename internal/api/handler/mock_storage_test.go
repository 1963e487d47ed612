package handler

import (
	"cinesocial/backend/internal/models"
	"cinesocial/backend/internal/storage"
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of storage.Storage.
type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) UsersExist(ctx context.Context, ids ...uint) (bool, error) {
	args := m.Called(ctx, ids)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockStorage) GetChatHistory(ctx context.Context, a, b uint, limit int, before *time.Time) ([]models.ChatMessage, error) {
	args := m.Called(ctx, a, b, limit, before)
	v0, _ := args.Get(0).([]models.ChatMessage)
	return v0, args.Error(1)
}

func (m *MockStorage) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockStorage) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	v0, _ := args.Get(0).(*models.User)
	return v0, args.Error(1)
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	v0, _ := args.Get(0).(*models.User)
	return v0, args.Error(1)
}

func (m *MockStorage) LinkTelegramChat(ctx context.Context, userID uint, chatID int64) error {
	return m.Called(ctx, userID, chatID).Error(0)
}

func (m *MockStorage) UnlinkTelegramChat(ctx context.Context, chatID int64) error {
	return m.Called(ctx, chatID).Error(0)
}

func (m *MockStorage) CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockStorage) GetFriendRequest(ctx context.Context, id uint) (*models.FriendRequest, error) {
	args := m.Called(ctx, id)
	v0, _ := args.Get(0).(*models.FriendRequest)
	return v0, args.Error(1)
}

func (m *MockStorage) FindPendingRequest(ctx context.Context, a, b uint) (*models.FriendRequest, error) {
	args := m.Called(ctx, a, b)
	v0, _ := args.Get(0).(*models.FriendRequest)
	return v0, args.Error(1)
}

func (m *MockStorage) ListIncomingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	args := m.Called(ctx, userID)
	v0, _ := args.Get(0).([]models.FriendRequest)
	return v0, args.Error(1)
}

func (m *MockStorage) AcceptFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockStorage) RejectFriendRequest(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListFriends(ctx context.Context, userID uint) ([]models.Friend, error) {
	args := m.Called(ctx, userID)
	v0, _ := args.Get(0).([]models.Friend)
	return v0, args.Error(1)
}

func (m *MockStorage) RemoveFriend(ctx context.Context, a, b uint) error {
	return m.Called(ctx, a, b).Error(0)
}

func (m *MockStorage) CountFriends(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) AddToWishlist(ctx context.Context, item *models.WishlistItem) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) RemoveFromWishlist(ctx context.Context, userID uint, movieID string) error {
	return m.Called(ctx, userID, movieID).Error(0)
}

func (m *MockStorage) ListWishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	args := m.Called(ctx, userID)
	v0, _ := args.Get(0).([]models.WishlistItem)
	return v0, args.Error(1)
}

func (m *MockStorage) CountWishlist(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) GetWatchEntry(ctx context.Context, userID uint, movieID string) (*models.WatchHistory, error) {
	args := m.Called(ctx, userID, movieID)
	v0, _ := args.Get(0).(*models.WatchHistory)
	return v0, args.Error(1)
}

func (m *MockStorage) GetWatchEntryByID(ctx context.Context, id uint) (*models.WatchHistory, error) {
	args := m.Called(ctx, id)
	v0, _ := args.Get(0).(*models.WatchHistory)
	return v0, args.Error(1)
}

func (m *MockStorage) SaveWatchEntry(ctx context.Context, entry *models.WatchHistory) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockStorage) DeleteWatchEntry(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) ListWatchHistory(ctx context.Context, userID uint, page, pageSize int) ([]models.WatchHistory, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	v0, _ := args.Get(0).([]models.WatchHistory)
	return v0, args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) GetWatchStats(ctx context.Context, userID uint) (models.WatchStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.WatchStats), args.Error(1)
}

func (m *MockStorage) FavoriteMovies(ctx context.Context, userID uint, minRating, limit int) ([]models.WatchHistory, error) {
	args := m.Called(ctx, userID, minRating, limit)
	v0, _ := args.Get(0).([]models.WatchHistory)
	return v0, args.Error(1)
}

func (m *MockStorage) LikeMovie(ctx context.Context, userID uint, movieID string) error {
	return m.Called(ctx, userID, movieID).Error(0)
}

func (m *MockStorage) ListLikedMovieIDs(ctx context.Context, userID uint) ([]string, error) {
	args := m.Called(ctx, userID)
	v0, _ := args.Get(0).([]string)
	return v0, args.Error(1)
}

func (m *MockStorage) LogActivity(ctx context.Context, entry *models.ActivityLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockStorage) ListActivity(ctx context.Context, userIDs []uint, page, pageSize int) ([]models.ActivityLog, int64, error) {
	args := m.Called(ctx, userIDs, page, pageSize)
	v0, _ := args.Get(0).([]models.ActivityLog)
	return v0, args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) ListComments(ctx context.Context, movieID string) ([]models.Comment, error) {
	args := m.Called(ctx, movieID)
	v0, _ := args.Get(0).([]models.Comment)
	return v0, args.Error(1)
}

func (m *MockStorage) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	args := m.Called(ctx, id)
	v0, _ := args.Get(0).(*models.Comment)
	return v0, args.Error(1)
}

func (m *MockStorage) CreateComment(ctx context.Context, c *models.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockStorage) DeleteComment(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStorage) CountComments(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) UserReactions(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error) {
	args := m.Called(ctx, userID, commentIDs)
	v0, _ := args.Get(0).(map[uint]bool)
	return v0, args.Error(1)
}

func (m *MockStorage) ToggleReaction(ctx context.Context, userID, commentID uint, isLike bool) (models.ReactionResult, error) {
	args := m.Called(ctx, userID, commentID, isLike)
	return args.Get(0).(models.ReactionResult), args.Error(1)
}

func (m *MockStorage) GetInsight(ctx context.Context, title string) (*models.MovieInsight, error) {
	args := m.Called(ctx, title)
	v0, _ := args.Get(0).(*models.MovieInsight)
	return v0, args.Error(1)
}

func (m *MockStorage) SaveInsight(ctx context.Context, insight *models.MovieInsight) error {
	return m.Called(ctx, insight).Error(0)
}

func (m *MockStorage) CacheGet(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	v0, _ := args.Get(0).([]byte)
	return v0, args.Error(1)
}

func (m *MockStorage) CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockStorage) CacheDelete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
