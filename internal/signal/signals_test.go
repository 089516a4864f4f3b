package signal

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTimes covers the epoch, small offsets, present-day instants and a
// random spread so the envelope checks see every phase of each wave.
func sampleTimes() []float64 {
	times := []float64{0, 1, 5000, 15000, 16000, 61000, 1.7e12, 1760000000000}

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		times = append(times, math.Floor(r.Float64()*4e12))
	}

	return times
}

func TestEnvelopes(t *testing.T) {
	for _, ms := range sampleTimes() {
		temp := Temperature(ms)
		assert.GreaterOrEqual(t, temp, 20.0, "Temperature(%v)", ms)
		assert.LessOrEqual(t, temp, 30.0, "Temperature(%v)", ms)

		p := Pressure(ms)
		assert.GreaterOrEqual(t, p, 95.0, "Pressure(%v)", ms)
		assert.LessOrEqual(t, p, 105.0, "Pressure(%v)", ms)

		lvl := TankLevel(ms)
		assert.GreaterOrEqual(t, lvl, 40.0, "TankLevel(%v)", ms)
		assert.LessOrEqual(t, lvl, 80.0, "TankLevel(%v)", ms)

		fan := FanSpeed(ms)
		assert.GreaterOrEqual(t, fan, int32(800), "FanSpeed(%v)", ms)
		assert.LessOrEqual(t, fan, int32(1200), "FanSpeed(%v)", ms)

		pump := PumpSpeed(ms)
		assert.GreaterOrEqual(t, pump, int32(500), "PumpSpeed(%v)", ms)
		assert.LessOrEqual(t, pump, int32(700), "PumpSpeed(%v)", ms)
	}
}

func TestKnownValuesAt5000(t *testing.T) {
	assert.InDelta(t, 29.207, Temperature(5000), 0.001)
	assert.Equal(t, 25.0+5.0*math.Sin(1.0), Temperature(5000))

	// 200*sin(5/3) = 199.08..., floor 199
	assert.Equal(t, int32(1199), FanSpeed(5000))

	// 100*cos(1.25) = 31.53..., floor 31
	assert.Equal(t, int32(631), PumpSpeed(5000))
}

func TestFloorNotTruncation(t *testing.T) {
	// sin(4) is negative, so 200*sin(4) = -151.36... floors to -152.
	ms := 3000 * 4.0
	raw := 200 * math.Sin(ms/3000)
	require.Less(t, raw, 0.0)
	require.NotEqual(t, math.Trunc(raw), math.Floor(raw))

	assert.Equal(t, 1000+int32(math.Floor(raw)), FanSpeed(ms))
}

func TestMachineStateCycle(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{0, "Running"},
		{14999, "Running"},
		{15000, "Idle"},
		{16000, "Idle"},
		{30000, "Maintenance"},
		{45000, "Stopped"},
		{59999, "Stopped"},
		{60000, "Running"},
		{61000, "Running"},
		{76000, "Idle"},
		{-1, "Stopped"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MachineState(tt.ms), "MachineState(%v)", tt.ms)
	}
}

func TestMachineStatePeriodicity(t *testing.T) {
	for _, ms := range sampleTimes()[:200] {
		assert.Equal(t, MachineState(ms), MachineState(ms+60000))
	}
}

func TestTimeSignalsArePure(t *testing.T) {
	for _, ms := range sampleTimes()[:500] {
		assert.Equal(t, math.Float64bits(Temperature(ms)), math.Float64bits(Temperature(ms)))
		assert.Equal(t, math.Float64bits(Pressure(ms)), math.Float64bits(Pressure(ms)))
		assert.Equal(t, math.Float64bits(TankLevel(ms)), math.Float64bits(TankLevel(ms)))
		assert.Equal(t, FanSpeed(ms), FanSpeed(ms))
		assert.Equal(t, PumpSpeed(ms), PumpSpeed(ms))
		assert.Equal(t, MachineState(ms), MachineState(ms))
	}
}
