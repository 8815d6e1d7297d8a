package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptCredentialsRoundTrip(t *testing.T) {
	creds := RememberedCredentials{
		Email:      "mira@agensilive.id",
		Role:       "CREATOR",
		UserID:     "64f1b2c3d4e5f60718293a4b",
		ExpiresAt:  time.Now().Add(30 * 24 * time.Hour).Truncate(time.Second),
		DeviceInfo: "Mozilla/5.0",
	}

	encrypted, err := EncryptCredentials(creds)
	require.NoError(t, err)
	assert.NotContains(t, encrypted, creds.Email)

	decrypted, err := DecryptCredentials(encrypted)
	require.NoError(t, err)
	assert.Equal(t, creds.Email, decrypted.Email)
	assert.Equal(t, creds.Role, decrypted.Role)
	assert.Equal(t, creds.UserID, decrypted.UserID)
	assert.True(t, creds.ExpiresAt.Equal(decrypted.ExpiresAt))
}

func TestDecryptCredentialsRejectsTamperedData(t *testing.T) {
	encrypted, err := EncryptCredentials(RememberedCredentials{Email: "mira@agensilive.id"})
	require.NoError(t, err)

	tampered := "A" + encrypted[1:]
	_, err = DecryptCredentials(tampered)
	assert.Error(t, err)
}

func TestDecryptCredentialsRejectsGarbage(t *testing.T) {
	_, err := DecryptCredentials("not base64 at all!!!")
	assert.Error(t, err)

	_, err = DecryptCredentials("c2hvcnQ=")
	assert.Error(t, err)
}

func TestGenerateRememberMeTokenIsUnique(t *testing.T) {
	a, err := GenerateRememberMeToken()
	require.NoError(t, err)
	b, err := GenerateRememberMeToken()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestRememberedCredentialsRequireRedis(t *testing.T) {
	err := StoreRememberedCredentials(nil, "token", RememberedCredentials{}, time.Hour)
	assert.Error(t, err)

	_, err = RetrieveRememberedCredentials(nil, "token")
	assert.Error(t, err)

	err = RemoveRememberedCredentials(nil, "token")
	assert.Error(t, err)
}
