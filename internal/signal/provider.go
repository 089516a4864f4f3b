package signal

import "time"

// Evaluator produces the current value of a variable. Implementations must
// be safe for concurrent use, must not block, and must always return a
// value of the same type.
type Evaluator interface {
	Evaluate() Value
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func() Value

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate() Value {
	return f()
}

// Clock returns the current instant.
type Clock func() time.Time

// Definition describes one variable exposed under the Simulation container.
type Definition struct {
	Name        string
	DisplayName string
	Type        ValueType
	Evaluator   Evaluator
}

// Provider binds the signal functions to a clock and a counter cell.
type Provider struct {
	clock   Clock
	counter *Counter
}

// NewProvider creates a Provider. A nil clock means time.Now.
func NewProvider(clock Clock, counter *Counter) *Provider {
	if clock == nil {
		clock = time.Now
	}
	if counter == nil {
		counter = NewCounter()
	}

	return &Provider{clock: clock, counter: counter}
}

// Counter returns the counter cell read by the Counter variable.
func (p *Provider) Counter() *Counter {
	return p.counter
}

func (p *Provider) millis() float64 {
	return Millis(p.clock())
}

// Definitions returns the eight simulated variables in display order.
func (p *Provider) Definitions() []Definition {
	return []Definition{
		{
			Name:        "Temperature",
			DisplayName: "Temperature (°C)",
			Type:        TypeDouble,
			Evaluator:   EvaluatorFunc(func() Value { return Double(Temperature(p.millis())) }),
		},
		{
			Name:        "Pressure",
			DisplayName: "Pressure (bar)",
			Type:        TypeDouble,
			Evaluator:   EvaluatorFunc(func() Value { return Double(Pressure(p.millis())) }),
		},
		{
			Name:        "FanSpeed",
			DisplayName: "Fan Speed (RPM)",
			Type:        TypeInt32,
			Evaluator:   EvaluatorFunc(func() Value { return Int32(FanSpeed(p.millis())) }),
		},
		{
			Name:        "PumpSpeed",
			DisplayName: "Pump Speed (RPM)",
			Type:        TypeInt32,
			Evaluator:   EvaluatorFunc(func() Value { return Int32(PumpSpeed(p.millis())) }),
		},
		{
			Name:        "TankLevel",
			DisplayName: "Tank Level (%)",
			Type:        TypeDouble,
			Evaluator:   EvaluatorFunc(func() Value { return Double(TankLevel(p.millis())) }),
		},
		{
			Name:        "MachineState",
			DisplayName: "Machine State",
			Type:        TypeString,
			Evaluator:   EvaluatorFunc(func() Value { return String(MachineState(p.millis())) }),
		},
		{
			Name:        "Counter",
			DisplayName: "Counter",
			Type:        TypeInt32,
			Evaluator:   EvaluatorFunc(func() Value { return Int32(p.counter.Load()) }),
		},
		{
			Name:        "ServerTime",
			DisplayName: "Server Time",
			Type:        TypeDateTime,
			Evaluator:   EvaluatorFunc(func() Value { return DateTime(p.clock()) }),
		},
	}
}
