package kucoin

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"
)

// signPayload returns base64(HMAC-SHA256(secret, payload)).
func signPayload(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signRequest attaches the KC-API v2 auth headers. The signature covers
// timestamp + METHOD + endpoint (with query) + body; the passphrase is
// itself HMAC-signed with the API secret.
func (c *Client) signRequest(req *http.Request, method, endpoint string, body []byte) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)

	req.Header.Set("KC-API-KEY", c.key)
	req.Header.Set("KC-API-SIGN", signPayload(c.secret, timestamp+method+endpoint+string(body)))
	req.Header.Set("KC-API-TIMESTAMP", timestamp)
	req.Header.Set("KC-API-PASSPHRASE", signPayload(c.secret, c.passphrase))
	req.Header.Set("KC-API-KEY-VERSION", "2")
}
