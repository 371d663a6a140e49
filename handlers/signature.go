package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// signatureTolerance bounds how stale a signed timestamp may be before the
// request is treated as a replay.
const signatureTolerance = 300 // seconds

// verifyStripeSignature checks a Stripe-Signature header against the raw
// request body without the provider SDK. The header is a comma-separated
// list of key=value pairs carrying a unix timestamp (t) and one or more
// candidate signatures (v1, several during secret rotation). The expected
// signature is HMAC-SHA256 over "{t}.{body}" with the shared secret,
// rendered as lowercase hex; any matching v1 accepts.
func verifyStripeSignature(payload []byte, sigHeader, secret string, now time.Time) bool {
	var timestamp string
	var signatures []string

	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	diff := now.Unix() - ts
	if diff > signatureTolerance || diff < -signatureTolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return true
		}
	}

	return false
}
