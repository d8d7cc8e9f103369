package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection identifies which admin screen an asset belongs to. Every screen
// shares the same ingestion pipeline and record shape; the collection is the
// discriminator.
type Collection string

const (
	CollectionPortfolio  Collection = "portfolio"
	CollectionReels      Collection = "reels"
	CollectionThumbnails Collection = "thumbnails"
	CollectionShowreel   Collection = "showreel"
	CollectionAboutVideo Collection = "about"
	CollectionTeam       Collection = "team"
)

// Collections lists every valid collection, in display order.
var Collections = []Collection{
	CollectionPortfolio,
	CollectionReels,
	CollectionThumbnails,
	CollectionShowreel,
	CollectionAboutVideo,
	CollectionTeam,
}

// Valid reports whether c names a known collection.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

// Asset is the persisted record referencing a completed upload. The actual
// bytes live in object storage; an Asset is only ever created after those
// bytes are durably written.
type Asset struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Collection Collection         `bson:"collection" json:"collection"`

	AssetURL    string `bson:"assetUrl" json:"assetUrl"`   // Public read URL of the stored object
	AssetKey    string `bson:"assetKey" json:"-"`          // Bucket key - internal use
	FileName    string `bson:"fileName" json:"fileName"`   // Original filename provided by the client
	ContentType string `bson:"contentType" json:"contentType"`
	Size        int64  `bson:"size" json:"size"`

	Title     string `bson:"title,omitempty" json:"title,omitempty"`
	Category  string `bson:"category,omitempty" json:"category,omitempty"`
	SortOrder int    `bson:"sortOrder" json:"sortOrder"`
	Active    bool   `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
