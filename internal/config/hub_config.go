package config

import "time"

const (
	// Websocket transport
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 4096
	SendBufferSize = 256

	// Chat history
	DefaultHistoryPageSize = 50
	MaxHistoryPageSize     = 200

	// Redis channel shared by all instances for direct messages
	ChatRelayChannel = "chat:direct"

	// Catalog cache lifetimes
	CatalogSearchTTL = 15 * time.Minute
	CatalogBrowseTTL = 30 * time.Minute
	CatalogDetailTTL = time.Hour

	// Sessions
	SessionCookieName = "jwt"
	SessionLifetime   = 2 * time.Hour
	TokenIssuer       = "cinesocial-service"

	// Feeds
	DefaultFeedPageSize = 20
	ProfileRecentItems  = 10
	ProfileFavorites    = 5
	FavoriteMinRating   = 8

	// Telegram account linking
	TelegramLinkTTL      = 10 * time.Minute
	TelegramPreviewRunes = 120

	// Plot-similarity recommendations
	RecommendMaxLiked         = 20
	RecommendCandidatePages   = 2
	RecommendPerLiked         = 5
	RecommendFetchConcurrency = 4
)

// BrowseSeedTerms feed the paged "browse" listing; the catalog has no
// "all movies" endpoint, so browsing rotates over these search terms.
var BrowseSeedTerms = []string{
	"batman", "superman", "marvel", "star", "spider",
	"action", "avenger", "dark", "iron", "war",
}
