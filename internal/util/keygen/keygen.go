package keygen

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

// DefaultBits is the RSA key size used by the VM wizard.
const DefaultBits = 3072

// ErrKeyExists is returned by WriteFiles when the private key file exists.
var ErrKeyExists = errors.New("key file already exists")

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format,
	// including the comment and a trailing newline.
	PublicKey []byte
}

// Generate creates a key pair whose public key carries comment, usually
// "<vm>@kconsole".
func Generate(bits int, comment string) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}
	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	publicKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}
	pub := bytes.TrimSpace(ssh.MarshalAuthorizedKey(publicKey))
	if comment != "" {
		pub = append(pub, ' ')
		pub = append(pub, comment...)
	}
	return &KeyPair{PrivateKey: privateKeyPEM, PublicKey: append(pub, '\n')}, nil
}

// AuthorizedKey returns the public key as one cloud-init ssh_authorized_keys
// entry.
func (k *KeyPair) AuthorizedKey() string {
	return strings.TrimSpace(string(k.PublicKey))
}

// WriteFiles stores the pair as dir/name (mode 0600) and dir/name.pub. An
// existing private key is never overwritten.
func (k *KeyPair) WriteFiles(dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	priv := filepath.Join(dir, name)
	f, err := os.OpenFile(priv, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%s: %w", priv, ErrKeyExists)
		}
		return "", fmt.Errorf("failed to create private key file: %w", err)
	}
	if _, err := f.Write(k.PrivateKey); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write private key: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write private key: %w", err)
	}
	// #nosec G306
	if err := os.WriteFile(priv+".pub", k.PublicKey, 0o644); err != nil {
		return "", fmt.Errorf("failed to write public key: %w", err)
	}
	return priv, nil
}

// LocalPublicKeys returns the valid authorized-key lines of dir/*.pub,
// typically ~/.ssh. A missing directory yields no keys.
func LocalPublicKeys(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.pub"))
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, p := range paths {
		// #nosec G304
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		if _, _, _, _, err := ssh.ParseAuthorizedKey(data); err != nil {
			continue
		}
		keys = append(keys, strings.TrimSpace(string(data)))
	}
	return keys, nil
}
