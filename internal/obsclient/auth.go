package obsclient

import (
	"crypto/sha256"
	"encoding/base64"
)

// computeAuthResponse implements the obs-websocket v5 authentication
// string derivation (spec §4.2):
//
//	secret = base64(sha256(password + salt))
//	auth   = base64(sha256(secret + challenge))
func computeAuthResponse(password, salt, challenge string) string {
	secretSum := sha256.Sum256([]byte(password + salt))
	secret := base64.StdEncoding.EncodeToString(secretSum[:])

	authSum := sha256.Sum256([]byte(secret + challenge))
	return base64.StdEncoding.EncodeToString(authSum[:])
}
