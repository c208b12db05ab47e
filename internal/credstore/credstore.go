// Package credstore persists provider API keys and the business profile
// encrypted at rest. The cipher key lives in a separate file so leaking the
// ciphertext alone reveals nothing.
package credstore

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/atomicfile"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/validate"
)

// Secrets is the plaintext payload of the store.
type Secrets struct {
	FirecrawlKey string        `json:"firecrawl_key,omitempty"`
	AnthropicKey string        `json:"anthropic_key,omitempty"`
	OpenAIKey    string        `json:"openai_key,omitempty"`
	Provider     string        `json:"provider,omitempty"`
	Profile      model.Profile `json:"profile"`
}

// Store reads and writes the encrypted secrets file.
type Store struct {
	credsPath string
	keyPath   string
}

// New returns a store backed by the given ciphertext and key file paths.
func New(credsPath, keyPath string) *Store {
	return &Store{credsPath: credsPath, keyPath: keyPath}
}

// oldKeyPath is the fallback key left behind by an interrupted rotation.
func (s *Store) oldKeyPath() string {
	return s.keyPath + ".old"
}

// loadOrCreateKey reads the cipher key, generating and persisting a fresh
// one on first use.
func (s *Store) loadOrCreateKey() ([]byte, error) {
	key, err := os.ReadFile(s.keyPath)
	if err == nil {
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, eris.Wrap(err, "credstore: read key")
	}

	key, err = newKey()
	if err != nil {
		return nil, err
	}
	if err := atomicfile.WriteFile(s.keyPath, key, 0o600); err != nil {
		return nil, err
	}
	zap.L().Info("credstore: generated new cipher key", zap.String("path", s.keyPath))
	return key, nil
}

// Save validates and encrypts the secrets, then installs the ciphertext
// atomically. Validation runs before any I/O so a bad key never clobbers
// a good store.
func (s *Store) Save(secrets *Secrets) error {
	if err := validateSecrets(secrets); err != nil {
		return err
	}

	key, err := s.loadOrCreateKey()
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(secrets)
	if err != nil {
		return eris.Wrap(err, "credstore: marshal secrets")
	}
	ciphertext, err := sealSecrets(key, plaintext)
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(s.credsPath, ciphertext, 0o600); err != nil {
		return err
	}

	zap.L().Info("credstore: saved",
		zap.String("provider", secrets.Provider),
		zap.String("firecrawl_key", Fingerprint(secrets.FirecrawlKey)),
		zap.String("anthropic_key", Fingerprint(secrets.AnthropicKey)),
		zap.String("openai_key", Fingerprint(secrets.OpenAIKey)))
	return nil
}

// Load decrypts and returns the stored secrets. A store that has never been
// saved yields (nil, nil). If the primary key fails to open the ciphertext,
// the rotation fallback key is tried before giving up.
func (s *Store) Load() (*Secrets, error) {
	secrets, _, err := s.loadWithKey()
	return secrets, err
}

// loadWithKey decrypts the store and also returns the key that actually
// opened the ciphertext. After an interrupted rotation that is the fallback
// key, not the one at keyPath.
func (s *Store) loadWithKey() (*Secrets, []byte, error) {
	ciphertext, err := os.ReadFile(s.credsPath)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "credstore: read ciphertext")
	}

	key, err := os.ReadFile(s.keyPath)
	if err != nil {
		return nil, nil, eris.Wrap(err, "credstore: read key")
	}

	plaintext, err := openSecrets(key, ciphertext)
	if err != nil {
		// An interrupted rotation may have installed the new key before
		// re-encrypting. The previous key is still on disk.
		old, oldErr := os.ReadFile(s.oldKeyPath())
		if oldErr != nil {
			return nil, nil, err
		}
		plaintext, oldErr = openSecrets(old, ciphertext)
		if oldErr != nil {
			return nil, nil, err
		}
		key = old
		zap.L().Warn("credstore: recovered with rotation fallback key")
	}

	var secrets Secrets
	if err := json.Unmarshal(plaintext, &secrets); err != nil {
		return nil, nil, eris.Wrap(err, "credstore: unmarshal secrets")
	}
	return &secrets, key, nil
}

// Rotate re-encrypts the store under a freshly generated cipher key. The
// previous key is kept as a fallback until the ciphertext is re-installed,
// so a crash at any point leaves the store decryptable.
func (s *Store) Rotate() error {
	secrets, openedWith, err := s.loadWithKey()
	if err != nil {
		return eris.Wrap(err, "credstore: rotate")
	}
	if secrets == nil {
		return eris.New("credstore: nothing to rotate")
	}

	// The fallback must be the key that actually opens the current
	// ciphertext. After an interrupted rotation that is not the key at
	// keyPath.
	if err := atomicfile.WriteFile(s.oldKeyPath(), openedWith, 0o600); err != nil {
		return err
	}

	freshKey, err := newKey()
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(s.keyPath, freshKey, 0o600); err != nil {
		return err
	}

	plaintext, err := json.Marshal(secrets)
	if err != nil {
		return eris.Wrap(err, "credstore: marshal secrets")
	}
	ciphertext, err := sealSecrets(freshKey, plaintext)
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(s.credsPath, ciphertext, 0o600); err != nil {
		return err
	}

	if err := os.Remove(s.oldKeyPath()); err != nil && !os.IsNotExist(err) {
		zap.L().Warn("credstore: could not remove fallback key", zap.Error(err))
	}

	zap.L().Info("credstore: rotated cipher key")
	return nil
}

// IsConfigured reports whether a usable key is stored for the given
// completion provider along with the scrape key.
func (s *Store) IsConfigured(provider string) (bool, error) {
	secrets, err := s.Load()
	if err != nil {
		return false, err
	}
	if secrets == nil {
		return false, nil
	}
	if secrets.FirecrawlKey == "" {
		return false, nil
	}
	switch validate.Provider(provider) {
	case validate.ProviderAnthropic:
		return secrets.AnthropicKey != "", nil
	case validate.ProviderOpenAI:
		return secrets.OpenAIKey != "", nil
	default:
		return false, nil
	}
}

func validateSecrets(secrets *Secrets) error {
	if secrets == nil {
		return eris.New("credstore: nil secrets")
	}
	if secrets.FirecrawlKey != "" {
		if err := validate.APIKey(validate.ProviderFirecrawl, secrets.FirecrawlKey); err != nil {
			return err
		}
	}
	if secrets.AnthropicKey != "" {
		if err := validate.APIKey(validate.ProviderAnthropic, secrets.AnthropicKey); err != nil {
			return err
		}
	}
	if secrets.OpenAIKey != "" {
		if err := validate.APIKey(validate.ProviderOpenAI, secrets.OpenAIKey); err != nil {
			return err
		}
	}
	switch validate.Provider(secrets.Provider) {
	case "", validate.ProviderAnthropic, validate.ProviderOpenAI:
	default:
		return eris.Errorf("credstore: unknown provider %q", secrets.Provider)
	}
	return nil
}
