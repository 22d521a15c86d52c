// Package progress defines the capability collision generators report through.
package progress

// Monitor receives the index of each key as it is produced. Calls may come
// from several goroutines at once and indices are not delivered in order.
type Monitor interface {
	Update(completed int)
}

// Nop discards every update.
var Nop Monitor = nopMonitor{}

type nopMonitor struct{}

func (nopMonitor) Update(int) {}

// Func adapts a plain function to a Monitor.
type Func func(completed int)

func (f Func) Update(completed int) { f(completed) }

// OrNop returns m, or Nop when m is nil.
func OrNop(m Monitor) Monitor {
	if m == nil {
		return Nop
	}
	return m
}
