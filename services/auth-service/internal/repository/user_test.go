package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/model"
)

func TestLiveResetTokenFilter(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	filter := liveResetTokenFilter("abc", now)

	assert.Equal(t, "abc", filter["reset_password_token"])
	assert.Equal(t, bson.M{"$gt": now}, filter["reset_password_expires"])
}

func TestExpiredResetTokenFilter(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, bson.M{"reset_password_expires": bson.M{"$lte": now}}, expiredResetTokenFilter(now))
}

func TestConsumeResetTokenUpdate(t *testing.T) {
	updatedAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	update := consumeResetTokenUpdate("new-hash", updatedAt)

	assert.Equal(t, bson.M{"password_hash": "new-hash", "updated_at": updatedAt}, update["$set"])

	// Both reset fields go away in the same update.
	unset, ok := update["$unset"].(bson.M)
	require.True(t, ok)
	assert.Len(t, unset, 2)
	assert.Contains(t, unset, "reset_password_token")
	assert.Contains(t, unset, "reset_password_expires")
}

// The field names must match the bson tags on model.User or the update
// would leave the document half cleared.
func TestUnsetResetFields_MatchUserBSON(t *testing.T) {
	expires := time.Now()
	raw, err := bson.Marshal(model.User{ResetPasswordToken: "t", ResetPasswordExpires: &expires})
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	for field := range unsetResetFields() {
		assert.Contains(t, doc, field)
	}
}
