package config

import "time"

// Server Constants
const (
	// DefaultAnalysisPort is where the idea-analysis API listens
	DefaultAnalysisPort = 8000

	// DefaultNewsPort is where the news API listens
	DefaultNewsPort = 8001

	// DefaultNewsOrigin is the frontend allowed to call the news API
	DefaultNewsOrigin = "http://localhost:5177"
)

// News Constants
const (
	// DefaultNewsSource is used when the request omits ?source=
	DefaultNewsSource = "Inc42"

	// MaxNewsArticles bounds the number of entries returned per feed
	MaxNewsArticles = 7

	// PlaceholderImage is returned when no image can be resolved for an entry
	PlaceholderImage = "https://via.placeholder.com/300x200.png?text=No+Image+Available"

	// FeedTimeout bounds a single feed fetch
	FeedTimeout = 30 * time.Second
)

// Pipeline Constants
const (
	// DefaultSession scopes artifacts when the caller does not supply a session id
	DefaultSession = "default"

	// DefaultStageTimeout bounds a single agent run
	DefaultStageTimeout = 5 * time.Minute

	// DefaultAgentMaxSteps caps the reason/act loop of one agent
	DefaultAgentMaxSteps = 12

	// ScrapeTimeout bounds a single readability fetch
	ScrapeTimeout = 30 * time.Second

	// MaxScrapedChars truncates scraped page text handed back to the model
	MaxScrapedChars = 6000
)

// Storage Constants
const (
	// DefaultArtifactDir is where the file store keeps markdown artifacts
	DefaultArtifactDir = "."

	// DefaultRedisKeyPrefix namespaces artifact keys in redis
	DefaultRedisKeyPrefix = "ideaforge:artifacts"

	// DefaultEventsTopic receives artifact.written events
	DefaultEventsTopic = "ideaforge.artifacts"
)
