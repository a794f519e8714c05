package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// GenerateOrderNumber produces a human-readable order reference:
//
//	SL-<utc unix millis>-<6 hex chars>
//
// The random suffix keeps same-millisecond orders apart; the unique index on
// order_number is the backstop.
func GenerateOrderNumber() string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("SL-%d-%s", time.Now().UTC().UnixMilli(), hex.EncodeToString(buf))
}
