package main

import (
	"os"
	"runtime"
	"time"
)

// workerStat is one row of the demo worker table.
type workerStat struct {
	ID        int
	Processed int
}

func (w workerStat) SnmpIndex() any { return w.ID }

// memoryStats is a point-in-time snapshot of the runtime heap.
type memoryStats struct {
	HeapAllocBytes uint64
	HeapObjects    uint64
	NumGC          uint32
}

// systemStatus is the object graph the demo agent serves. Note is
// writable through a manager; everything else is read-only telemetry.
type systemStatus struct {
	Hostname      string
	Pid           int
	UptimeSeconds int64
	Goroutines    int
	Note          string
	Memory        memoryStats
	Workers       []workerStat
}

func (s *systemStatus) SetNote(v string) { s.Note = v }

func newSystemStatus() *systemStatus {
	hostname, _ := os.Hostname()
	s := &systemStatus{
		Hostname: hostname,
		Pid:      os.Getpid(),
		Note:     "jots demo agent",
		Workers: []workerStat{
			{ID: 1},
			{ID: 2},
		},
	}
	s.refresh(time.Now())
	return s
}

// refresh updates the live counters in place; leaves read the members
// directly, so no rebuild is needed for value changes.
func (s *systemStatus) refresh(started time.Time) {
	s.UptimeSeconds = int64(time.Since(started) / time.Second)
	s.Goroutines = runtime.NumGoroutine()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	s.Memory.HeapAllocBytes = m.HeapAlloc
	s.Memory.HeapObjects = m.HeapObjects
	s.Memory.NumGC = m.NumGC

	for i := range s.Workers {
		s.Workers[i].Processed++
	}
}
