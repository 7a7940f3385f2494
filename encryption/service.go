package encryption

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"he-demo/models"
)

type CryptoService struct {
	scheme Scheme
}

func NewCryptoService(scheme Scheme) *CryptoService {
	return &CryptoService{scheme: scheme}
}

// Scheme returns the scheme used for all demo operations
func (cs *CryptoService) Scheme() Scheme {
	return cs.scheme
}

// EncryptAll encrypts each value in order
func (cs *CryptoService) EncryptAll(values []float64) []models.Ciphertext {
	out := make([]models.Ciphertext, len(values))
	for i, v := range values {
		out[i] = cs.scheme.Encrypt(v)
	}
	return out
}

// Aggregate folds ciphertexts left to right with the scheme's Add
func (cs *CryptoService) Aggregate(ciphertexts []models.Ciphertext) (models.Ciphertext, error) {
	return Fold(ciphertexts, cs.scheme.Add)
}

// Fingerprint returns the 0x-prefixed Keccak-256 digest of a ciphertext
func (cs *CryptoService) Fingerprint(ct models.Ciphertext) string {
	return Fingerprint(ct)
}

func Fingerprint(ct models.Ciphertext) string {
	return hexutil.Encode(Keccak256([]byte(ct)))
}

// Keccak256 computes Keccak-256 hash
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}
