package escrow

import (
	"sort"
	"sync"
	"time"
)

// Timer é uma transição agendada que pode ser cancelada
type Timer interface {
	Stop() bool
}

// Scheduler agenda f para rodar uma única vez após d
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// RealScheduler usa time.AfterFunc
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
func (RealScheduler) Now() time.Time { return time.Now() }

// ManualScheduler só avança quando Advance é chamado (testes e simulações)
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*manualTimer
}

type manualTimer struct {
	s    *ManualScheduler
	at   time.Time
	seq  int
	f    func()
	done bool
}

func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{s: m, at: m.now.Add(d), seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance move o relógio e dispara, em ordem, as tarefas vencidas.
// Os callbacks rodam fora do lock do scheduler.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	var due []*manualTimer
	pending := m.tasks[:0]
	for _, t := range m.tasks {
		switch {
		case t.done:
		case !t.at.After(m.now):
			t.done = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	m.tasks = pending
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	for _, t := range due {
		t.f()
	}
}

// Pending conta as tarefas ainda agendadas
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.done {
			n++
		}
	}
	return n
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
