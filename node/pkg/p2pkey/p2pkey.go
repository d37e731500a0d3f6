// Package p2pkey loads or generates the guardian node's persistent identity
// keypair. The gossip transport that would use this identity is out of
// scope for this core; only key material management lives here.
package p2pkey

import (
	"crypto/rand"
	"fmt"
	"os"

	libp2pcrypto "github.com/libp2p/go-libp2p/core/crypto"
)

// Load reads a node identity key from path, generating and persisting a new
// Ed25519 keypair if the file does not exist.
func Load(path string) (libp2pcrypto.PrivKey, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return generateAndSave(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read node key at %s: %w", path, err)
	}

	key, err := libp2pcrypto.UnmarshalPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal node key at %s: %w", path, err)
	}
	return key, nil
}

func generateAndSave(path string) (libp2pcrypto.PrivKey, error) {
	priv, _, err := libp2pcrypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate node key: %w", err)
	}

	raw, err := libp2pcrypto.MarshalPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal node key: %w", err)
	}

	if err := os.WriteFile(path, raw, 0600); err != nil {
		return nil, fmt.Errorf("failed to persist node key at %s: %w", path, err)
	}
	return priv, nil
}
