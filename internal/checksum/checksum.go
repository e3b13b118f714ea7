// Package checksum derives content digests and record identifiers.
package checksum

import (
	"crypto/md5" //nolint:gosec // identifiers, not security
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// RecordID returns the session identifier of the record with the given case
// number and person name: the hex MD5 of "<caseID>_<name>".
func RecordID(caseID, name string) string {
	h := md5.Sum([]byte(caseID + "_" + name)) //nolint:gosec
	return hex.EncodeToString(h[:])
}
