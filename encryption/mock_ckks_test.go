package encryption

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"he-demo/models"
)

func TestEncryptDeterministic(t *testing.T) {
	vectors := [][]float64{
		{42, 17},
		{0, 0, 0},
		{-3, 2.5, 1e6, 7},
		{1, 2, 3, 4, 5},
	}

	for _, values := range vectors {
		for _, v := range values {
			first := Encrypt(v)
			second := Encrypt(v)
			assert.Equal(t, first, second, "value %v", v)
			assert.True(t, strings.HasPrefix(string(first), ciphertextPrefix))
		}
	}
}

func TestEncryptShape(t *testing.T) {
	ct := string(Encrypt(42))

	parts := strings.Split(ct, "::")
	require.Len(t, parts, 3)
	assert.Equal(t, "CKKS", parts[0])
	assert.Len(t, parts[1], 8)
	assert.Len(t, parts[2], ciphertextBodyLen)

	// 42*12345+67890 = 586380
	assert.Equal(t, "NTg2Mzgw", parts[1])
	// i=0: 42*7 = 294, 294 mod 64 = 38 -> 'm'
	assert.Equal(t, byte('m'), parts[2][0])
}

func TestEncryptDistinguishesValues(t *testing.T) {
	assert.NotEqual(t, Encrypt(42), Encrypt(17))
}

func TestEncryptHandlesNegativeAndFractional(t *testing.T) {
	for _, v := range []float64{-1, -42.75, 0.5, 3.14159} {
		body := strings.Split(string(Encrypt(v)), "::")[2]
		require.Len(t, body, ciphertextBodyLen)
		for _, c := range body {
			assert.Contains(t, cipherAlphabet, string(c))
		}
	}
}

func TestCombineDeterministic(t *testing.T) {
	a, b := Encrypt(42), Encrypt(17)

	first, err := Combine(a, b)
	require.NoError(t, err)
	second, err := Combine(a, b)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(string(first), aggregatePrefix))
	assert.Len(t, string(first), len(aggregatePrefix)+aggregateBodyLen)
}

func TestCombineRejectsEmpty(t *testing.T) {
	_, err := Combine("", Encrypt(1))
	assert.ErrorIs(t, err, ErrEmptyCiphertext)

	_, err = Fold(nil, Combine)
	assert.ErrorIs(t, err, ErrEmptyCiphertext)
}

func TestFold(t *testing.T) {
	cts := []models.Ciphertext{Encrypt(1), Encrypt(2), Encrypt(3)}

	single, err := Fold(cts[:1], Combine)
	require.NoError(t, err)
	assert.Equal(t, cts[0], single)

	ab, err := Combine(cts[0], cts[1])
	require.NoError(t, err)
	want, err := Combine(ab, cts[2])
	require.NoError(t, err)

	got, err := Fold(cts, Combine)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecryptGate(t *testing.T) {
	tests := []struct {
		key  string
		pass bool
	}{
		{"", false},
		{"abc", false},
		{"demo", true},
		{"Demo", false},
		{"demo ", false},
		{"key", false},
		{"mykey123", true},
		{"topsecret", true},
		{"abcdefgh", false},
		{"abcdefghijklmno", false},
		{"abcdefghijklmnop", true},
		{"sk_secret_ABCDEFGHIJKLMNOPQRSTUVWXYZ012345", true},
		{"ключключключключ", true},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			for _, ct := range []models.Ciphertext{"", "garbage", Encrypt(9)} {
				got, err := Decrypt(ct, tc.key, 59)
				if tc.pass {
					require.NoError(t, err)
					assert.Equal(t, 59.0, got)
				} else {
					assert.ErrorIs(t, err, ErrInvalidKey)
				}
			}
		})
	}
}

func TestGenerateKeyPair(t *testing.T) {
	scheme := NewMockCKKSWithSource(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		kp := scheme.GenerateKeyPair()

		assert.True(t, strings.HasPrefix(kp.PublicKey, PublicKeyPrefix))
		assert.True(t, strings.HasPrefix(kp.PrivateKey, PrivateKeyPrefix))
		assert.Len(t, kp.PublicKey, len(PublicKeyPrefix)+keyBodyLen)
		assert.Len(t, kp.PrivateKey, len(PrivateKeyPrefix)+keyBodyLen)
		assert.True(t, KeyAccepted(kp.PrivateKey))
	}
}

func TestFingerprint(t *testing.T) {
	cs := NewCryptoService(NewMockCKKS())

	fp := cs.Fingerprint(Encrypt(42))
	assert.True(t, strings.HasPrefix(fp, "0x"))
	assert.Len(t, fp, 66)
	assert.Equal(t, fp, Fingerprint(Encrypt(42)))
	assert.NotEqual(t, fp, Fingerprint(Encrypt(17)))
}

func TestCryptoServiceAggregate(t *testing.T) {
	cs := NewCryptoService(NewMockCKKS())

	cts := cs.EncryptAll([]float64{42, 17})
	require.Len(t, cts, 2)

	agg, err := cs.Aggregate(cts)
	require.NoError(t, err)

	want, err := Combine(cts[0], cts[1])
	require.NoError(t, err)
	assert.Equal(t, want, agg)

	_, err = cs.Aggregate(nil)
	assert.ErrorIs(t, err, ErrEmptyCiphertext)
}
