package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const solenoidProfile = `profile:
  id: solenoid
  version: "1.0"
mode: spike_hold_off
pwm_freq_hz: 5000
resolution_bits: 8
spike_length_ms: 150
spike_percent: 100
hold_percent: 25
`

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(content), 0o644))
}

func TestLoaderLoadValidProfile(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "solenoid", solenoidProfile)

	loader, err := NewLoader([]string{dir})
	require.NoError(t, err)

	p, err := loader.Load("solenoid")
	require.NoError(t, err)

	assert.Equal(t, "solenoid", p.Profile.ID)
	assert.Equal(t, "spike_hold_off", p.Mode)
	assert.Equal(t, uint32(5000), p.PWMFreqHz)
	assert.Equal(t, uint8(8), p.ResolutionBits)
	assert.Equal(t, uint16(150), p.SpikeLengthMs)
	assert.Equal(t, uint8(100), p.SpikePercent)
	assert.Equal(t, uint8(25), p.HoldPercent)
}

func TestLoaderNotFound(t *testing.T) {
	loader, err := NewLoader([]string{t.TempDir()})
	require.NoError(t, err)

	_, err = loader.Load("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile not found")
}

func TestLoaderRejectsSchemaViolations(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"bad_mode": `profile:
  id: bad_mode
  version: "1.0"
mode: sideways
`,
		"missing_profile": `mode: on_off
`,
		"freq_too_low": `profile:
  id: freq_too_low
  version: "1.0"
mode: spike_hold_off
pwm_freq_hz: 10
`,
		"unknown_field": `profile:
  id: unknown_field
  version: "1.0"
mode: on_off
ramp_rate: 5
`,
	}

	loader, err := NewLoader([]string{dir})
	require.NoError(t, err)

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			writeProfile(t, dir, name, content)
			_, err := loader.Load(name)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestLoaderRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "broken", "mode: [unclosed\n")

	loader, err := NewLoader([]string{dir})
	require.NoError(t, err)

	_, err = loader.Load("broken")
	assert.Error(t, err)
}

func TestLoaderCachesByName(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "solenoid", solenoidProfile)

	loader, err := NewLoader([]string{dir})
	require.NoError(t, err)

	first, err := loader.Load("solenoid")
	require.NoError(t, err)

	// the file may vanish, the cache still serves the profile
	require.NoError(t, os.Remove(filepath.Join(dir, "solenoid.yaml")))

	second, err := loader.Load("solenoid")
	require.NoError(t, err)
	assert.Same(t, first, second)

	loader.ClearCache()
	_, err = loader.Load("solenoid")
	assert.Error(t, err)
}

func TestLoaderSearchPathOrder(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	writeProfile(t, dirA, "relay", `profile:
  id: relay-a
  version: "1.0"
mode: on_off
`)
	writeProfile(t, dirB, "relay", `profile:
  id: relay-b
  version: "1.0"
mode: on_off
`)

	loader, err := NewLoader([]string{dirA, dirB})
	require.NoError(t, err)

	p, err := loader.Load("relay")
	require.NoError(t, err)
	assert.Equal(t, "relay-a", p.Profile.ID)
}
