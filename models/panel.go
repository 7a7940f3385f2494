package models

import "strings"

// InvalidKeyMessage is shown when a candidate key fails the decrypt check
const InvalidKeyMessage = "Invalid private key. Try using the generated key or any key with 16+ characters."

// DecryptionPanel is the local state of the decryption form
type DecryptionPanel struct {
	CandidateKey string
	Revealed     bool
	Result       *float64
	Error        string
}

// PanelState is the rendered view of a DecryptionPanel
type PanelState struct {
	CandidateKey string   `json:"candidate_key"`
	Revealed     bool     `json:"revealed"`
	CanDecrypt   bool     `json:"can_decrypt"`
	Result       *float64 `json:"result,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func (p *DecryptionPanel) SetKey(key string) {
	p.CandidateKey = key
	p.ClearOutcome()
}

func (p *DecryptionPanel) ClearOutcome() {
	p.Result = nil
	p.Error = ""
}

func (p *DecryptionPanel) Toggle() {
	p.Revealed = !p.Revealed
}

func (p *DecryptionPanel) Succeed(value float64) {
	p.Result = &value
	p.Error = ""
}

func (p *DecryptionPanel) Fail(message string) {
	p.Result = nil
	p.Error = message
}

// State renders the panel. Hidden keys are masked one bullet per character.
func (p *DecryptionPanel) State(hasAggregate bool) *PanelState {
	key := p.CandidateKey
	if !p.Revealed {
		key = strings.Repeat("•", len([]rune(key)))
	}

	var result *float64
	if p.Result != nil {
		v := *p.Result
		result = &v
	}

	return &PanelState{
		CandidateKey: key,
		Revealed:     p.Revealed,
		CanDecrypt:   hasAggregate && p.CandidateKey != "",
		Result:       result,
		Error:        p.Error,
	}
}
