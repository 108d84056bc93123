package bookings

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	bookingIDPrefix = "BKG"
	maxIDAttempts   = 5
)

// IDGenerator yields candidate booking identifiers.
type IDGenerator func() (string, error)

// RandomID returns "BKG" followed by six random digits.
func RandomID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate booking id: %w", err)
	}
	return fmt.Sprintf("%s%d", bookingIDPrefix, 100000+n.Int64()), nil
}

func provisionalTransactionID(now time.Time) string {
	return fmt.Sprintf("TXN%d", now.UnixMilli())
}
