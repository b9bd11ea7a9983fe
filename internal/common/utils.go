package common

import (
	"strings"

	gethcommon "github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress lowercases a hex address so it can serve as an entity key.
// Accepts addresses with or without checksum casing.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func IsValidAddress(address string) bool {
	return gethcommon.IsHexAddress(address)
}

// NormalizeHash lowercases a transaction hash for use in entity keys.
func NormalizeHash(hash string) string {
	return strings.ToLower(strings.TrimSpace(hash))
}
