package encryption

import (
	"encoding/base64"
	"errors"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"he-demo/models"
)

// MOCK ONLY. Nothing in this file encrypts anything.

const (
	ciphertextPrefix = "CKKS::"
	aggregatePrefix  = "HE_SUM::"

	ciphertextBodyLen = 64
	aggregateBodyLen  = 72
	keyBodyLen        = 32

	PublicKeyPrefix  = "pk_"
	PrivateKeyPrefix = "sk_secret_"

	// DemoPassphrase is always accepted by Decrypt.
	DemoPassphrase = "demo"
)

const (
	cipherAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	keyAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	ErrInvalidKey      = errors.New("invalid private key")
	ErrEmptyCiphertext = errors.New("empty ciphertext")
)

// MockCKKS produces strings that look like CKKS ciphertexts.
type MockCKKS struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockCKKS creates a mock scheme seeded from the clock.
func NewMockCKKS() *MockCKKS {
	return NewMockCKKSWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewMockCKKSWithSource creates a mock scheme whose key generation draws from src.
func NewMockCKKSWithSource(src rand.Source) *MockCKKS {
	return &MockCKKS{rng: rand.New(src)}
}

func (m *MockCKKS) Name() string {
	return "CKKS"
}

func (m *MockCKKS) Encrypt(value float64) models.Ciphertext {
	return Encrypt(value)
}

func (m *MockCKKS) Add(a, b models.Ciphertext) (models.Ciphertext, error) {
	return Combine(a, b)
}

func (m *MockCKKS) Decrypt(ciphertext models.Ciphertext, candidateKey string, knownSum float64) (float64, error) {
	return Decrypt(ciphertext, candidateKey, knownSum)
}

// GenerateKeyPair is safe for concurrent use.
func (m *MockCKKS) GenerateKeyPair() models.KeyPair {
	m.mu.Lock()
	defer m.mu.Unlock()
	return GenerateKeyPair(m.rng)
}

// Encrypt returns a deterministic ciphertext-shaped string for value.
func Encrypt(value float64) models.Ciphertext {
	seed := strconv.FormatFloat(value*12345+67890, 'f', -1, 64)
	tag := base64.StdEncoding.EncodeToString([]byte(seed))
	if len(tag) > 8 {
		tag = tag[:8]
	}

	var body strings.Builder
	body.Grow(ciphertextBodyLen)
	for i := 0; i < ciphertextBodyLen; i++ {
		n := value*float64(i+1)*7 + float64(i*13)
		body.WriteByte(cipherAlphabet[alphabetIndex(n)])
	}

	return models.Ciphertext(ciphertextPrefix + tag + "::" + body.String())
}

// alphabetIndex maps any finite float onto [0, len(cipherAlphabet)).
func alphabetIndex(n float64) int {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	size := float64(len(cipherAlphabet))
	idx := math.Mod(math.Floor(n), size)
	if idx < 0 {
		idx += size
	}
	return int(idx)
}

// Combine mixes the bytes of a and b into an aggregate-shaped string.
func Combine(a, b models.Ciphertext) (models.Ciphertext, error) {
	if len(a) == 0 || len(b) == 0 {
		return "", ErrEmptyCiphertext
	}

	var body strings.Builder
	body.Grow(aggregateBodyLen)
	for i := 0; i < aggregateBodyLen; i++ {
		combined := int(a[i%len(a)]) + int(b[i%len(b)])
		body.WriteByte(cipherAlphabet[combined%len(cipherAlphabet)])
	}

	return models.Ciphertext(aggregatePrefix + body.String()), nil
}

// Fold reduces ciphertexts left to right with add.
func Fold(ciphertexts []models.Ciphertext, add func(a, b models.Ciphertext) (models.Ciphertext, error)) (models.Ciphertext, error) {
	if len(ciphertexts) == 0 {
		return "", ErrEmptyCiphertext
	}

	result := ciphertexts[0]
	for _, next := range ciphertexts[1:] {
		var err error
		if result, err = add(result, next); err != nil {
			return "", err
		}
	}
	return result, nil
}

// Decrypt returns knownSum when candidateKey passes the key heuristic. The
// ciphertext is never inspected.
func Decrypt(_ models.Ciphertext, candidateKey string, knownSum float64) (float64, error) {
	if !KeyAccepted(candidateKey) {
		return 0, ErrInvalidKey
	}
	return knownSum, nil
}

// KeyAccepted reports whether candidateKey passes the decrypt gate.
func KeyAccepted(candidateKey string) bool {
	// The documented passphrase is accepted even though it is shorter than
	// the length floor below. Keep it first.
	if candidateKey == DemoPassphrase {
		return true
	}

	length := utf8.RuneCountInString(candidateKey)
	if length < 8 {
		return false
	}

	return strings.Contains(candidateKey, "key") ||
		strings.Contains(candidateKey, "secret") ||
		length >= 16
}

// GenerateKeyPair draws both keys from rng.
func GenerateKeyPair(rng *rand.Rand) models.KeyPair {
	public := make([]byte, keyBodyLen)
	private := make([]byte, keyBodyLen)
	for i := 0; i < keyBodyLen; i++ {
		public[i] = keyAlphabet[rng.Intn(len(keyAlphabet))]
		private[i] = keyAlphabet[rng.Intn(len(keyAlphabet))]
	}

	return models.KeyPair{
		PublicKey:  PublicKeyPrefix + string(public),
		PrivateKey: PrivateKeyPrefix + string(private),
	}
}
