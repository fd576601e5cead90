package metrics

import "math"

// Metric accumulates an error measure over (truth, estimate) pairs.
type Metric interface {
	Name() string
	Observe(truth, est []float64)
	Value() float64
	Reset()
}

// RMSError is the root mean square difference over every observed sample.
type RMSError struct {
	name    string
	sumSq   float64
	samples int
}

func NewRMSError() *RMSError {
	return &RMSError{name: "rms_error"}
}

func (m *RMSError) Name() string { return m.name }

func (m *RMSError) Observe(truth, est []float64) {
	n := min(len(truth), len(est))
	for i := 0; i < n; i++ {
		d := truth[i] - est[i]
		m.sumSq += d * d
	}
	m.samples += n
}

func (m *RMSError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *RMSError) Reset() {
	m.sumSq = 0
	m.samples = 0
}

type MaxAbsError struct {
	name string
	max  float64
}

func NewMaxAbsError() *MaxAbsError {
	return &MaxAbsError{name: "max_abs_error"}
}

func (m *MaxAbsError) Name() string { return m.name }

func (m *MaxAbsError) Observe(truth, est []float64) {
	n := min(len(truth), len(est))
	for i := 0; i < n; i++ {
		m.max = math.Max(m.max, math.Abs(truth[i]-est[i]))
	}
}

func (m *MaxAbsError) Value() float64 { return m.max }

func (m *MaxAbsError) Reset() { m.max = 0 }

// ImprovementRatio compares a noisy record and a filtered record against
// the same reference. Observe takes the reference as truth; the first call
// after Reset supplies the noisy record and the second the filtered one.
type ImprovementRatio struct {
	name   string
	before *RMSError
	after  *RMSError
	calls  int
}

func NewImprovementRatio() *ImprovementRatio {
	return &ImprovementRatio{
		name:   "improvement",
		before: NewRMSError(),
		after:  NewRMSError(),
	}
}

func (m *ImprovementRatio) Name() string { return m.name }

func (m *ImprovementRatio) Observe(truth, est []float64) {
	if m.calls%2 == 0 {
		m.before.Observe(truth, est)
	} else {
		m.after.Observe(truth, est)
	}
	m.calls++
}

// Value is rms(before)/rms(after), +Inf for a perfect reconstruction and 0
// before both records have been observed.
func (m *ImprovementRatio) Value() float64 {
	if m.calls < 2 {
		return 0
	}
	after := m.after.Value()
	if after == 0 {
		return math.Inf(1)
	}
	return m.before.Value() / after
}

func (m *ImprovementRatio) Reset() {
	m.before.Reset()
	m.after.Reset()
	m.calls = 0
}
