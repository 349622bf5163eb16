package cloudresource

import (
	"fmt"

	"golang.org/x/crypto/ssh"
)

// Keypair is an SSH key-pair. Names are unique per backend.
//
// The fingerprint and public key are kept consistent: once both are set the
// fingerprint must be the one derived from the public key, either in the
// legacy MD5 colon form or in the SHA256 form.
type Keypair struct {
	Metadata `json:",inline" yaml:",inline"`

	fingerprint string
	publicKey   string

	// PrivateKey is only populated by Create when the backend generated the
	// key-pair. It is not part of equality.
	PrivateKey string `json:"-" yaml:"-"`
}

// NewKeypair returns a keypair model for creation from an OpenSSH public key
func NewKeypair(name, publicKey string) (*Keypair, error) {
	k := &Keypair{Metadata: Metadata{Name: name}}
	if err := k.SetPublicKey(publicKey); err != nil {
		return nil, err
	}
	return k, nil
}

// Kind returns KindKeypair
func (k *Keypair) Kind() Kind {
	return KindKeypair
}

// Fingerprint returns the key fingerprint
func (k *Keypair) Fingerprint() string {
	return k.fingerprint
}

// PublicKey returns the OpenSSH encoded public key
func (k *Keypair) PublicKey() string {
	return k.publicKey
}

// SetPublicKey sets the public key, checking it against any fingerprint already set
func (k *Keypair) SetPublicKey(publicKey string) error {
	if err := checkFingerprint(publicKey, k.fingerprint); err != nil {
		return err
	}
	k.publicKey = publicKey
	return nil
}

// SetFingerprint sets the fingerprint, checking it against any public key already set
func (k *Keypair) SetFingerprint(fingerprint string) error {
	if err := checkFingerprint(k.publicKey, fingerprint); err != nil {
		return err
	}
	k.fingerprint = fingerprint
	return nil
}

// Equal compares name, identifier, fingerprint and public key
func (k *Keypair) Equal(other Item) bool {
	o, ok := other.(*Keypair)
	if !ok || o == nil {
		return false
	}
	return k.Metadata == o.Metadata && k.fingerprint == o.fingerprint && k.publicKey == o.publicKey
}

// DeepCopyItem returns a copy of the keypair
func (k *Keypair) DeepCopyItem() Item {
	c := *k
	return &c
}

// FingerprintOf returns the legacy MD5 fingerprint of an OpenSSH public key
func FingerprintOf(publicKey string) (string, error) {
	pub, err := parsePublicKey(publicKey)
	if err != nil {
		return "", err
	}
	return ssh.FingerprintLegacyMD5(pub), nil
}

func checkFingerprint(publicKey, fingerprint string) error {
	if publicKey == "" {
		return nil
	}
	pub, err := parsePublicKey(publicKey)
	if err != nil {
		return err
	}
	if fingerprint == "" {
		return nil
	}
	if fingerprint != ssh.FingerprintLegacyMD5(pub) && fingerprint != ssh.FingerprintSHA256(pub) {
		return fmt.Errorf("%w: fingerprint %q does not match public key", ErrInvalidInput, fingerprint)
	}
	return nil
}

func parsePublicKey(publicKey string) (ssh.PublicKey, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(publicKey))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid public key: %v", ErrInvalidInput, err)
	}
	return pub, nil
}
