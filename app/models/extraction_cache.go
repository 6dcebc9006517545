package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExtractionCache is the persistent (MongoDB) cache document for one
// extracted address.
type ExtractionCache struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RawFingerprint    string             `bson:"raw_fingerprint" json:"raw_fingerprint"`
	RawAddress        string             `bson:"raw_address" json:"raw_address"`
	NormalizedAddress string             `bson:"normalized_address" json:"normalized_address"`
	Result            ExtractionResult   `bson:"result" json:"result"`
	Confidence        float64            `bson:"confidence" json:"confidence"`
	GazetteerVersion  string             `bson:"gazetteer_version" json:"gazetteer_version"`
	ManuallyVerified  bool               `bson:"manually_verified" json:"manually_verified"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed      time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount       int                `bson:"access_count" json:"access_count"`
}

// UpdateAccess bumps the access bookkeeping.
func (ec *ExtractionCache) UpdateAccess() {
	ec.LastAccessed = time.Now()
	ec.AccessCount++
}

// IsValidGazetteerVersion reports whether the entry was built against the
// given gazetteer version.
func (ec *ExtractionCache) IsValidGazetteerVersion(currentVersion string) bool {
	return ec.GazetteerVersion == currentVersion
}
