package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// GenerateCode returns an uppercase hex string of n random bytes.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// NewTicketID returns a best-effort unique ticket identifier in the form
// TICKET-<epoch millis>-<0..999>. Not suitable for security-sensitive dedup.
func NewTicketID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		// rand.Int only fails when the system entropy source is broken;
		// fall back to a millisecond remainder rather than aborting a sale.
		return fmt.Sprintf("TICKET-%d-%d", time.Now().UnixMilli(), time.Now().UnixMilli()%1000)
	}
	return fmt.Sprintf("TICKET-%d-%d", time.Now().UnixMilli(), n.Int64())
}

// NewPaymentReference returns the client reference handed to the payment
// widget for one checkout attempt.
func NewPaymentReference() string {
	return fmt.Sprintf("REF-%d", time.Now().UnixMilli())
}
