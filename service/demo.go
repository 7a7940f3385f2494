package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"he-demo/encryption"
	"he-demo/logging"
	"he-demo/models"
)

var (
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrEditorLocked      = errors.New("values can only be edited before the demo runs")
	ErrNothingToDecrypt  = errors.New("no encrypted result to decrypt")
	ErrEmptyKey          = errors.New("private key is empty")
	ErrClosed            = errors.New("demo is closed")
)

// transitions maps each step to the only step it may advance to. Reset is
// handled separately and may leave any step.
var transitions = map[models.Step]models.Step{
	models.StepInput:      models.StepEncrypting,
	models.StepEncrypting: models.StepSending,
	models.StepSending:    models.StepComputing,
	models.StepComputing:  models.StepComplete,
}

// Timings are the waits spent in each timed step
type Timings struct {
	Encrypt time.Duration
	Send    time.Duration
	Compute time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Encrypt: 1500 * time.Millisecond,
		Send:    time.Second,
		Compute: 2 * time.Second,
	}
}

type DemoOptions struct {
	ID        string
	Values    []float64
	Timings   Timings
	Scheduler Scheduler
	Crypto    *encryption.CryptoService
	Notifier  *Notifier
	Metrics   *MetricsCollector
}

// Demo is the page controller: it owns the step, the plaintext values, the
// generated keys and the encrypted artifacts, and sequences the timed steps.
type Demo struct {
	mu sync.Mutex

	id          string
	step        models.Step
	stepStarted time.Time
	values      *models.PlaintextVector
	keys        *models.KeyPair
	ciphertexts []models.Ciphertext
	aggregate   models.Ciphertext
	panel       models.DecryptionPanel

	// gen invalidates timer callbacks scheduled before a reset or close
	gen     uint64
	cancel  func()
	closed  bool
	timings Timings

	scheduler Scheduler
	crypto    *encryption.CryptoService
	notifier  *Notifier
	metrics   *MetricsCollector
}

func NewDemo(opts DemoOptions) (*Demo, error) {
	values := opts.Values
	if values == nil {
		values = models.DefaultValues()
	}
	vector, err := models.NewPlaintextVector(values)
	if err != nil {
		return nil, fmt.Errorf("invalid initial values: %w", err)
	}

	if opts.Timings == (Timings{}) {
		opts.Timings = DefaultTimings()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewTimerScheduler()
	}
	if opts.Crypto == nil {
		opts.Crypto = encryption.NewCryptoService(encryption.NewMockCKKS())
	}
	if opts.Notifier == nil {
		opts.Notifier = NewNotifier(defaultNotificationCapacity)
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetricsCollector(nil)
	}

	return &Demo{
		id:          opts.ID,
		step:        models.StepInput,
		stepStarted: time.Now(),
		values:      vector,
		timings:     opts.Timings,
		scheduler:   opts.Scheduler,
		crypto:      opts.Crypto,
		notifier:    opts.Notifier,
		metrics:     opts.Metrics,
	}, nil
}

func (d *Demo) ID() string {
	return d.id
}

func (d *Demo) Step() models.Step {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.step
}

// Run generates keys and starts the timed encrypt/send/compute sequence
func (d *Demo) Run() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if err := d.advance(models.StepEncrypting); err != nil {
		return err
	}

	keys := d.crypto.Scheme().GenerateKeyPair()
	d.keys = &keys
	d.metrics.RecordRunStart()
	d.notifier.Publish("Keys Generated", "Your cryptographic key pair has been created.")

	values := d.values.Values()
	d.schedule(d.timings.Encrypt, func() { d.onEncrypted(values) })
	return nil
}

func (d *Demo) onEncrypted(values []float64) {
	d.ciphertexts = d.crypto.EncryptAll(values)
	d.notifier.Publish("Values Encrypted",
		fmt.Sprintf("%d values encrypted with %s scheme.", len(values), d.crypto.Scheme().Name()))

	if err := d.advance(models.StepSending); err != nil {
		logging.Errorf("demo %s: %v", d.id, err)
		return
	}
	d.schedule(d.timings.Send, d.onSent)
}

func (d *Demo) onSent() {
	if err := d.advance(models.StepComputing); err != nil {
		logging.Errorf("demo %s: %v", d.id, err)
		return
	}
	d.schedule(d.timings.Compute, d.onComputed)
}

func (d *Demo) onComputed() {
	aggregate, err := d.crypto.Aggregate(d.ciphertexts)
	if err != nil {
		logging.Errorf("demo %s: failed to aggregate ciphertexts: %v", d.id, err)
		return
	}
	d.aggregate = aggregate
	d.notifier.Publish("Computation Complete", "Server performed homomorphic addition on encrypted data.")

	if err := d.advance(models.StepComplete); err != nil {
		logging.Errorf("demo %s: %v", d.id, err)
		return
	}
	d.metrics.RecordRunComplete()
	logging.Infof("demo %s: aggregate %s ready", d.id, d.crypto.Fingerprint(aggregate))
}

// Reset cancels any pending step, discards keys, ciphertexts, the aggregate
// and the decryption form, and returns to input. Values are kept.
func (d *Demo) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.step == models.StepInput {
		return nil
	}

	d.cancelPending()
	d.keys = nil
	d.ciphertexts = nil
	d.aggregate = ""
	d.panel = models.DecryptionPanel{}
	d.enter(models.StepInput)
	d.metrics.RecordReset()
	return nil
}

// Close cancels any pending step. The demo rejects further runs.
func (d *Demo) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.cancelPending()
}

// advance moves to the next step, enforcing the transition table.
// Callers hold d.mu.
func (d *Demo) advance(to models.Step) error {
	if next, ok := transitions[d.step]; !ok || next != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.step, to)
	}
	d.enter(to)
	return nil
}

func (d *Demo) enter(to models.Step) {
	now := time.Now()
	if d.step.InFlight() {
		d.metrics.RecordStage(d.step, now.Sub(d.stepStarted))
	}
	logging.Debugf("demo %s: %s -> %s", d.id, d.step, to)
	d.step = to
	d.stepStarted = now
}

// schedule arranges for fn to run under d.mu after delay unless the demo is
// reset or closed first. Callers hold d.mu.
func (d *Demo) schedule(delay time.Duration, fn func()) {
	gen := d.gen
	d.cancel = d.scheduler.Schedule(delay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed || d.gen != gen {
			return
		}
		d.cancel = nil
		fn()
	})
}

func (d *Demo) cancelPending() {
	d.gen++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Value editor

func (d *Demo) AddValue() error {
	return d.edit(func(v *models.PlaintextVector) error { return v.Append() })
}

func (d *Demo) RemoveValue(index int) error {
	return d.edit(func(v *models.PlaintextVector) error { return v.Remove(index) })
}

func (d *Demo) UpdateValue(index int, text string) error {
	return d.edit(func(v *models.PlaintextVector) error { return v.Update(index, text) })
}

func (d *Demo) edit(op func(*models.PlaintextVector) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.step != models.StepInput {
		return ErrEditorLocked
	}
	return op(d.values)
}

// Decryption form

func (d *Demo) SetCandidateKey(key string) error {
	return d.withPanel(func(p *models.DecryptionPanel) { p.SetKey(key) })
}

func (d *Demo) ToggleKeyVisibility() error {
	return d.withPanel(func(p *models.DecryptionPanel) { p.Toggle() })
}

// CandidateKey returns the unmasked key text and whether it is revealed
func (d *Demo) CandidateKey() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.panel.CandidateKey, d.panel.Revealed
}

// UseGeneratedKey copies the generated private key into the key field
func (d *Demo) UseGeneratedKey() error {
	return d.withPanel(func(p *models.DecryptionPanel) { p.SetKey(d.keys.PrivateKey) })
}

func (d *Demo) withPanel(fn func(*models.DecryptionPanel)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.step != models.StepComplete || d.keys == nil {
		return ErrInvalidTransition
	}
	fn(&d.panel)
	return nil
}

// Decrypt checks the candidate key and, when it is accepted, reveals the
// plaintext sum. The sum comes from the plaintext values, not the ciphertext.
func (d *Demo) Decrypt() (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.step != models.StepComplete {
		return 0, ErrInvalidTransition
	}
	if d.aggregate == "" {
		d.panel.Fail("No encrypted result to decrypt")
		return 0, ErrNothingToDecrypt
	}
	if d.panel.CandidateKey == "" {
		return 0, ErrEmptyKey
	}

	sum, err := d.crypto.Scheme().Decrypt(d.aggregate, d.panel.CandidateKey, d.values.Sum())
	if err != nil {
		d.panel.Fail(models.InvalidKeyMessage)
		d.metrics.RecordDecrypt(false)
		return 0, err
	}

	d.panel.Succeed(sum)
	d.metrics.RecordDecrypt(true)
	return sum, nil
}

// Notifications drains pending notifications
func (d *Demo) Notifications() []models.Notification {
	return d.notifier.Drain()
}

// Snapshot returns the state to render
func (d *Demo) Snapshot() models.DemoState {
	d.mu.Lock()
	defer d.mu.Unlock()

	editable := d.step == models.StepInput
	state := models.DemoState{
		Step:           d.step,
		Values:         d.values.Values(),
		PlaintextSum:   d.values.Sum(),
		EditorEnabled:  editable,
		CanAddValue:    editable && d.values.CanAppend(),
		CanRemoveValue: editable && d.values.CanRemove(),
		Aggregate:      d.aggregate,
		Scheme:         d.crypto.Scheme().Name(),
	}

	if d.keys != nil {
		state.PublicKey = d.keys.PublicKey
	}
	for i, ct := range d.ciphertexts {
		state.EncryptedValues = append(state.EncryptedValues, models.EncryptedValue{
			Plaintext:   state.Values[i],
			Ciphertext:  ct,
			Fingerprint: d.crypto.Fingerprint(ct),
		})
	}

	if d.step == models.StepComplete && d.keys != nil {
		sum := d.values.Sum()
		state.ExpectedSum = &sum
		state.GeneratedKey = d.keys.PrivateKey
		state.Panel = d.panel.State(d.aggregate != "")
	}
	return state
}
