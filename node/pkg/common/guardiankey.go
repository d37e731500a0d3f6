package common

import (
	"crypto/ecdsa"
	"fmt"
	"os"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// LoadGuardianKey reads the guardian's secp256k1 signing key from path. In
// unsafeDevMode a missing file is filled in with a freshly generated key
// rather than treated as an error, mirroring how a devnet guardian bootstraps
// without an operator provisioning a real key first.
func LoadGuardianKey(path string, unsafeDevMode bool) (*ecdsa.PrivateKey, error) {
	key, err := ethcrypto.LoadECDSA(path)
	if err == nil {
		return key, nil
	}
	if !os.IsNotExist(err) || !unsafeDevMode {
		return nil, fmt.Errorf("failed to load guardian key at %s: %w", path, err)
	}

	key, err = ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate devnet guardian key: %w", err)
	}
	if err := ethcrypto.SaveECDSA(path, key); err != nil {
		return nil, fmt.Errorf("failed to persist devnet guardian key at %s: %w", path, err)
	}
	return key, nil
}
