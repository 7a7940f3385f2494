// Package render holds text helpers shared by the HTML and terminal
// surfaces.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"he-demo/models"
)

// Display widths for truncated strings
const (
	CiphertextWidth = 50
	AggregateWidth  = 60
	PublicKeyWidth  = 40
)

// Truncate keeps the first n characters of s and appends "..." when s is
// longer.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n < 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// FormatAmount renders a sum the way the decryption panel shows it
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatValue renders a plaintext input without trailing zeros
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EncLabel is the caption shown above a ciphertext
func EncLabel(v float64) string {
	return "Enc(" + FormatValue(v) + ")"
}

// ProcessingActive reports whether the server animation is shown for step
func ProcessingActive(step models.Step) bool {
	return step == models.StepSending || step == models.StepComputing
}

var hops = []string{"Encrypted Data", "HE Server", "Result"}

// ProcessingFrame draws the three-hop animation at tick. Arrows light up
// one at a time.
func ProcessingFrame(tick int) string {
	var b strings.Builder
	lit := tick % 3
	for i, hop := range hops {
		b.WriteString("[" + hop + "]")
		if i == len(hops)-1 {
			break
		}
		b.WriteString(" ")
		for a := 0; a < 3; a++ {
			if a == lit {
				b.WriteString(">")
			} else {
				b.WriteString("-")
			}
		}
		b.WriteString(" ")
	}
	return b.String()
}

// StageMessage is the placeholder text for the decryption card
func StageMessage(step models.Step) string {
	switch step {
	case models.StepInput:
		return "Run encryption first..."
	case models.StepComplete:
		return ""
	default:
		return "Processing..."
	}
}

// CardTitle returns the title bar text of each of the three cards
func CardTitle(card int) string {
	switch card {
	case 0:
		return "client.wasm — Input Values"
	case 1:
		return "server.go — HE Computation"
	default:
		return "client.wasm — Decrypt Result"
	}
}
