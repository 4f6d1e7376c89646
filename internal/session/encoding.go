package session

import "encoding/base64"

// Cookie values cannot carry raw JSON (quotes and commas are rejected by
// net/http), so the persisted blob is base64-encoded.

func encodeCookieValue(blob []byte) string {
	return base64.URLEncoding.EncodeToString(blob)
}

func decodeCookieValue(value string) ([]byte, error) {
	return base64.URLEncoding.DecodeString(value)
}
