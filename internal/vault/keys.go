package vault

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fernet/fernet-go"
)

const rsaKeyBits = 4096

const (
	privateKeyPEMType = "RSA PRIVATE KEY"
	publicKeyPEMType  = "PUBLIC KEY"

	privateKeyPerm = 0600
	publicKeyPerm  = 0664
)

func generateRSAKeyPair() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}
	return key, nil
}

// writeRSAKeyPair writes both halves of the key pair into keyDir, creating
// the directory if needed. The private key must stay owner-only.
func writeRSAKeyPair(keyDir string, key *rsa.PrivateKey) error {
	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return fmt.Errorf("failed to create key directory %s: %w", keyDir, err)
	}

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  privateKeyPEMType,
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	privatePath := filepath.Join(keyDir, PrivateKeyFile)
	if err := os.WriteFile(privatePath, privatePEM, privateKeyPerm); err != nil {
		return fmt.Errorf("failed to write private key %s: %w", privatePath, err)
	}

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to marshal public key: %w", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  publicKeyPEMType,
		Bytes: publicDER,
	})
	publicPath := filepath.Join(keyDir, PublicKeyFile)
	if err := os.WriteFile(publicPath, publicPEM, publicKeyPerm); err != nil { // #nosec G306 -- the public half is meant to be shareable.
		return fmt.Errorf("failed to write public key %s: %w", publicPath, err)
	}

	return nil
}

// loadRSAKeyPair loads both key files from keyDir. Corrupt key material is
// an error, never a trigger for regeneration.
func loadRSAKeyPair(keyDir string) (*rsa.PublicKey, *rsa.PrivateKey, error) {
	publicKey, err := loadPublicKey(filepath.Join(keyDir, PublicKeyFile))
	if err != nil {
		return nil, nil, err
	}
	privateKey, err := loadPrivateKey(filepath.Join(keyDir, PrivateKeyFile))
	if err != nil {
		return nil, nil, err
	}
	return publicKey, privateKey, nil
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key %s: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != publicKeyPEMType {
		return nil, fmt.Errorf("public key %s is not a %s PEM block", path, publicKeyPEMType)
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key %s: %w", path, err)
	}
	publicKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key %s is not an RSA key", path)
	}
	return publicKey, nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %s: %w", path, err)
	}

	block, _ := pem.Decode(data)
	if block == nil || block.Type != privateKeyPEMType {
		return nil, fmt.Errorf("private key %s is not a %s PEM block", path, privateKeyPEMType)
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", path, err)
	}
	return privateKey, nil
}

func generateFernetKey(keyDir string) error {
	if err := os.MkdirAll(keyDir, 0700); err != nil {
		return fmt.Errorf("failed to create key directory %s: %w", keyDir, err)
	}

	var key fernet.Key
	if err := key.Generate(); err != nil {
		return fmt.Errorf("failed to generate fernet key: %w", err)
	}

	path := filepath.Join(keyDir, FernetKeyFile)
	if err := os.WriteFile(path, []byte(key.Encode()), privateKeyPerm); err != nil {
		return fmt.Errorf("failed to write fernet key %s: %w", path, err)
	}
	return nil
}

func loadFernetKey(keyDir string) (*fernet.Key, error) {
	path := filepath.Join(keyDir, FernetKeyFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fernet key %s: %w", path, err)
	}

	key, err := fernet.DecodeKey(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key %s: %w", path, err)
	}
	return key, nil
}
