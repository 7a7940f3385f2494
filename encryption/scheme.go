package encryption

import "he-demo/models"

// Scheme defines the operations the demo narrates as homomorphic encryption.
// Implementations in this package are display artifacts and provide no
// confidentiality.
type Scheme interface {
	// Identity information
	Name() string

	// Core operations
	Encrypt(value float64) models.Ciphertext
	Add(a, b models.Ciphertext) (models.Ciphertext, error)
	Decrypt(ciphertext models.Ciphertext, candidateKey string, knownSum float64) (float64, error)
	GenerateKeyPair() models.KeyPair
}
