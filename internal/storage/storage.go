package storage

import (
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// ErrNotFound wraps gorm.ErrRecordNotFound for callers outside this package.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("record already exists")
	// ErrCacheMiss is returned by CacheGet when the key is absent or the cache is disabled.
	ErrCacheMiss = errors.New("cache miss")
	// ErrCacheDisabled is returned by CacheSet when no Redis client is configured.
	ErrCacheDisabled = errors.New("cache disabled")
)

// ChatStore persists direct messages. It is all the hub needs.
type ChatStore interface {
	// UsersExist reports whether every id names a stored user.
	UsersExist(ctx context.Context, ids ...uint) (bool, error)
	SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error
	// GetChatHistory returns up to limit messages between a and b strictly older
	// than before (when set), in ascending conversation order.
	GetChatHistory(ctx context.Context, a, b uint, limit int, before *time.Time) ([]models.ChatMessage, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	LinkTelegramChat(ctx context.Context, userID uint, chatID int64) error
	UnlinkTelegramChat(ctx context.Context, chatID int64) error
}

type SocialStore interface {
	CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error
	GetFriendRequest(ctx context.Context, id uint) (*models.FriendRequest, error)
	// FindPendingRequest looks for a pending request between a and b in either direction.
	FindPendingRequest(ctx context.Context, a, b uint) (*models.FriendRequest, error)
	ListIncomingRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, req *models.FriendRequest) error
	RejectFriendRequest(ctx context.Context, id uint) error
	AreFriends(ctx context.Context, a, b uint) (bool, error)
	ListFriends(ctx context.Context, userID uint) ([]models.Friend, error)
	RemoveFriend(ctx context.Context, a, b uint) error
	CountFriends(ctx context.Context, userID uint) (int64, error)
}

type LibraryStore interface {
	AddToWishlist(ctx context.Context, item *models.WishlistItem) (bool, error)
	RemoveFromWishlist(ctx context.Context, userID uint, movieID string) error
	ListWishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error)
	CountWishlist(ctx context.Context, userID uint) (int64, error)

	GetWatchEntry(ctx context.Context, userID uint, movieID string) (*models.WatchHistory, error)
	GetWatchEntryByID(ctx context.Context, id uint) (*models.WatchHistory, error)
	SaveWatchEntry(ctx context.Context, entry *models.WatchHistory) error
	DeleteWatchEntry(ctx context.Context, id uint) error
	ListWatchHistory(ctx context.Context, userID uint, page, pageSize int) ([]models.WatchHistory, int64, error)
	GetWatchStats(ctx context.Context, userID uint) (models.WatchStats, error)
	FavoriteMovies(ctx context.Context, userID uint, minRating, limit int) ([]models.WatchHistory, error)

	LikeMovie(ctx context.Context, userID uint, movieID string) error
	ListLikedMovieIDs(ctx context.Context, userID uint) ([]string, error)
}

type ActivityStore interface {
	LogActivity(ctx context.Context, entry *models.ActivityLog) error
	// ListActivity pages the feed newest first. A nil userIDs slice means every user.
	ListActivity(ctx context.Context, userIDs []uint, page, pageSize int) ([]models.ActivityLog, int64, error)
}

type CommentStore interface {
	ListComments(ctx context.Context, movieID string) ([]models.Comment, error)
	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	CreateComment(ctx context.Context, c *models.Comment) error
	DeleteComment(ctx context.Context, id uint) error
	CountComments(ctx context.Context, userID uint) (int64, error)
	UserReactions(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error)
	ToggleReaction(ctx context.Context, userID, commentID uint, isLike bool) (models.ReactionResult, error)
}

type InsightStore interface {
	GetInsight(ctx context.Context, title string) (*models.MovieInsight, error)
	SaveInsight(ctx context.Context, insight *models.MovieInsight) error
}

type Cache interface {
	CacheGet(ctx context.Context, key string) ([]byte, error)
	CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error
	CacheDelete(ctx context.Context, key string) error
}

// Storage is the full persistence surface used by the HTTP layer.
type Storage interface {
	ChatStore
	UserStore
	SocialStore
	LibraryStore
	ActivityStore
	CommentStore
	InsightStore
	Cache
}

// Service implements Storage on Postgres (gorm) and Redis.
// Redis may be nil, in which case the cache always misses.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

var _ Storage = (*Service)(nil)

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// OpenPostgres connects gorm with unique-violation translation enabled so
// duplicate writes surface as gorm.ErrDuplicatedKey.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// AllModels lists every table owned by the service.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.ChatMessage{},
		&models.Friend{},
		&models.FriendRequest{},
		&models.WishlistItem{},
		&models.WatchHistory{},
		&models.MovieLike{},
		&models.ActivityLog{},
		&models.Comment{},
		&models.CommentReaction{},
		&models.MovieInsight{},
	}
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log := logging.With("storage")
	log.Info().Int("tables", len(AllModels())).Msg("migrations complete")
	return nil
}

// translate maps gorm errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}

func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
