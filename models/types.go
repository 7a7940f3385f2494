package models

import "time"

// Step is the demo's position in the encrypt/send/compute sequence
type Step string

const (
	StepInput      Step = "input"
	StepEncrypting Step = "encrypting"
	StepSending    Step = "sending"
	StepComputing  Step = "computing"
	StepComplete   Step = "complete"
)

// InFlight reports whether the step is one of the timed stages
func (s Step) InFlight() bool {
	return s == StepEncrypting || s == StepSending || s == StepComputing
}

// Ciphertext is an opaque display string standing in for an encrypted value
type Ciphertext string

type KeyPair struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
}

type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type EncryptedValue struct {
	Plaintext   float64    `json:"plaintext"`
	Ciphertext  Ciphertext `json:"ciphertext"`
	Fingerprint string     `json:"fingerprint"`
}

// DemoState is a read-only snapshot of a demo
type DemoState struct {
	Step            Step             `json:"step"`
	Values          []float64        `json:"values"`
	PlaintextSum    float64          `json:"plaintext_sum"`
	EditorEnabled   bool             `json:"editor_enabled"`
	CanAddValue     bool             `json:"can_add_value"`
	CanRemoveValue  bool             `json:"can_remove_value"`
	PublicKey       string           `json:"public_key,omitempty"`
	EncryptedValues []EncryptedValue `json:"encrypted_values,omitempty"`
	Aggregate       Ciphertext       `json:"aggregate,omitempty"`
	ExpectedSum     *float64         `json:"expected_sum,omitempty"`
	GeneratedKey    string           `json:"generated_private_key,omitempty"`
	Panel           *PanelState      `json:"decryption,omitempty"`
	Scheme          string           `json:"scheme"`
}
