package common

import (
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
)

// GenerateHexPrivateKey returns a fresh private key in hex and the address it controls
func GenerateHexPrivateKey() (string, string, error) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		return "", "", err
	}

	// Convert the private key to bytes
	privateKeyBytes := crypto.FromECDSA(pk)

	// Convert the bytes to a hexadecimal string
	privateKeyHex := hex.EncodeToString(privateKeyBytes)

	return privateKeyHex, crypto.PubkeyToAddress(pk.PublicKey).Hex(), nil
}
