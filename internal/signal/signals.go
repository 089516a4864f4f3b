package signal

import (
	"math"
	"time"
)

// MachineStates lists the machine states in cycle order.
var MachineStates = [...]string{"Running", "Idle", "Maintenance", "Stopped"}

// MachineStatePeriod is how long the machine stays in one state.
const MachineStatePeriod = 15 * time.Second

// Millis converts an instant into the float millisecond timeline that every
// time-derived signal is a function of.
func Millis(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// Temperature oscillates in [20, 30] °C.
func Temperature(ms float64) float64 {
	return 25.0 + 5.0*math.Sin(ms/5000)
}

// Pressure oscillates in [95, 105] bar.
func Pressure(ms float64) float64 {
	return 100.0 + 5.0*math.Cos(ms/7000)
}

// FanSpeed oscillates in [800, 1200] RPM.
func FanSpeed(ms float64) int32 {
	return 1000 + int32(math.Floor(200*math.Sin(ms/3000)))
}

// PumpSpeed oscillates in [500, 700] RPM.
func PumpSpeed(ms float64) int32 {
	return 600 + int32(math.Floor(100*math.Cos(ms/4000)))
}

// TankLevel oscillates in [40, 80] %.
func TankLevel(ms float64) float64 {
	return 60.0 + 20.0*math.Sin(ms/10000)
}

// MachineState cycles through MachineStates, one state per
// MachineStatePeriod, a full cycle per minute.
func MachineState(ms float64) string {
	period := float64(MachineStatePeriod.Milliseconds())
	n := int64(len(MachineStates))

	idx := int64(math.Floor(ms/period)) % n
	if idx < 0 {
		idx += n
	}

	return MachineStates[idx]
}
