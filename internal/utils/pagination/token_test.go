package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken_RoundTrip(t *testing.T) {
	txnDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	txnID := "3f1a2b4c-0000-4000-8000-000000000042"

	token := EncodeToken(txnDate, createdAt, txnID)
	gotDate, gotCreated, gotID, err := DecodeToken(token)

	require.NoError(t, err)
	assert.True(t, txnDate.Equal(gotDate))
	assert.True(t, createdAt.Equal(gotCreated))
	assert.Equal(t, txnID, gotID)
}

func TestDecodeToken_Invalid(t *testing.T) {
	_, _, _, err := DecodeToken("not-base64!!")
	assert.Error(t, err)

	_, _, _, err = DecodeToken("aGVsbG8=") // valid base64, no separator
	assert.Error(t, err)

	// Two-part token from an older client: no tiebreaker ID.
	twoPart := EncodeToken(time.Now().UTC(), time.Now().UTC(), "")
	_, _, _, err = DecodeToken(twoPart)
	assert.Error(t, err)
}
