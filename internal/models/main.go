// Package models defines the core data structures shared by the feed server
// and the client core: identities, chat messages, recipes and the locally
// persisted preference bundle.
package models

import "time"

// Identity is the logical role of the current session.
type Identity string

const (
	// Guest is the anonymous, read-only identity.
	Guest Identity = "guest"
	// PersonA is the first privileged identity. Its wire value is "her".
	PersonA Identity = "her"
	// PersonB is the second privileged identity. Its wire value is "him".
	PersonB Identity = "him"
)

// Privileged reports whether the identity may write to the remote feeds
// and open the admin panel.
func (i Identity) Privileged() bool {
	return i == PersonA || i == PersonB
}

// Other returns the counterpart of a privileged identity, or Guest.
func (i Identity) Other() Identity {
	switch i {
	case PersonA:
		return PersonB
	case PersonB:
		return PersonA
	default:
		return Guest
	}
}

// Feed names a remote collection.
type Feed string

const (
	// FeedMessages is the chat collection.
	FeedMessages Feed = "messages"
	// FeedRecipes is the recipe collection.
	FeedRecipes Feed = "recipes"
)

// Valid reports whether f is a known feed.
func (f Feed) Valid() bool {
	return f == FeedMessages || f == FeedRecipes
}

// ChatMessage is a single entry of the chat feed.
type ChatMessage struct {
	// ID is assigned by the feed server on append and never changes.
	ID string `json:"id"`
	// Text is the trimmed message body.
	Text string `json:"text" validate:"required"`
	// Sender is the privileged identity that wrote the message.
	Sender Identity `json:"sender" validate:"required,oneof=her him"`
	// Timestamp is assigned by the client at send time.
	Timestamp time.Time `json:"timestamp" validate:"required"`
	// SeenAt is set once the other identity has seen the message.
	SeenAt *time.Time `json:"seenAt,omitempty"`
}

// Category groups recipes.
type Category string

const (
	CategoryMain      Category = "main"
	CategoryDessert   Category = "dessert"
	CategorySnack     Category = "snack"
	CategoryBreakfast Category = "breakfast"
)

// Difficulty rates how demanding a recipe is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Recipe is a single entry of the recipe feed.
type Recipe struct {
	ID          string     `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Image       string     `json:"image,omitempty"`
	Category    Category   `json:"category" validate:"required,oneof=main dessert snack breakfast"`
	Time        string     `json:"time"`
	Difficulty  Difficulty `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Ingredients []string   `json:"ingredients"`
	Steps       []string   `json:"steps"`
	CreatedAt   time.Time  `json:"createdAt" validate:"required"`
}

// SongEntry is a playlist item pointing at an external video.
type SongEntry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// BucketItem is a shared dream on the bucket list.
type BucketItem struct {
	// ID is unique within the list for its whole lifetime.
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TimeCapsule holds the two letters and the day they unlock.
type TimeCapsule struct {
	// UnlockDate is a calendar date in YYYY-MM-DD form.
	UnlockDate    string `json:"unlockDate"`
	MessageForHer string `json:"messageForHer"`
	MessageForHim string `json:"messageForHim"`
}

// Bundle is the device-local preference set.
type Bundle struct {
	Playlist    []SongEntry  `json:"playlist"`
	Reasons     []string     `json:"reasons"`
	BucketList  []BucketItem `json:"bucketList"`
	TimeCapsule TimeCapsule  `json:"timeCapsule"`
}

// Query narrows a feed read. Ordering is fixed per feed: messages ascending
// by timestamp, recipes descending by creation time.
type Query struct {
	// Limit caps the result to the most recent Limit items; zero means no cap.
	Limit int
	// Before, when set, keeps only messages with timestamp <= Before.
	Before *time.Time
}
