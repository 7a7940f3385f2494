package service

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"he-demo/models"
)

func TestMetricsCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	mc := NewMetricsCollector(reg)

	mc.RecordRunStart()
	mc.RecordStage(models.StepEncrypting, 1500*time.Millisecond)
	mc.RecordStage(models.StepEncrypting, 500*time.Millisecond)
	mc.RecordRunComplete()
	mc.RecordReset()
	mc.RecordDecrypt(true)
	mc.RecordDecrypt(false)
	mc.RecordDecrypt(false)

	m := mc.GetMetrics()
	assert.Equal(t, 1, m.RunsStarted)
	assert.Equal(t, 1, m.RunsCompleted)
	assert.Equal(t, 1, m.Resets)
	assert.Equal(t, 1, m.DecryptSuccess)
	assert.Equal(t, 2, m.DecryptFailure)
	assert.Equal(t, StageMetrics{Count: 2, ProcessingTime: 2000}, m.Stages[models.StepEncrypting])

	expected := `
# HELP he_demo_decrypt_attempts_total Decrypt attempts by result.
# TYPE he_demo_decrypt_attempts_total counter
he_demo_decrypt_attempts_total{result="invalid_key"} 2
he_demo_decrypt_attempts_total{result="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "he_demo_decrypt_attempts_total"))
}
