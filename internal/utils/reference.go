package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReference generates a unique reference for balance transactions
func GenerateReference(prefix string) string {
	suffix := make([]byte, 8)
	for i := range suffix {
		suffix[i] = referenceCharset[rand.Intn(len(referenceCharset))]
	}

	timestamp := time.Now().Format("20060102")
	return fmt.Sprintf("%s_%s_%s", strings.ToUpper(prefix), timestamp, string(suffix))
}
