package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector tracks transfer statistics using lock-free atomic counters.
// Workers write; presenters read.
type Collector struct {
	bytesCopied        atomic.Int64
	buffersCopied      atomic.Int64
	bytesTotal         atomic.Int64
	workersStarted     atomic.Int64
	workersDone        atomic.Int64
	workersFailed      atomic.Int64
	chunksVerified     atomic.Int64
	chunksVerifyFailed atomic.Int64
	startTime          time.Time

	// Ring buffer, written only by the presenter's Tick().
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes delta per tick
	ringIdx    int
	ringCount  int // samples written, capped at ringSize
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	BytesCopied        int64
	BuffersCopied      int64
	BytesTotal         int64
	WorkersStarted     int64
	WorkersDone        int64
	WorkersFailed      int64
	ChunksVerified     int64
	ChunksVerifyFailed int64
	Elapsed            time.Duration
}

// SetTotal records the planned byte count once the plan is known.
func (c *Collector) SetTotal(bytes int64) { c.bytesTotal.Store(bytes) }

// AddBuffer records one completed read/write round trip of n bytes.
func (c *Collector) AddBuffer(n int64) {
	c.bytesCopied.Add(n)
	c.buffersCopied.Add(1)
}

func (c *Collector) AddWorkerStarted()     { c.workersStarted.Add(1) }
func (c *Collector) AddWorkerDone()        { c.workersDone.Add(1) }
func (c *Collector) AddWorkerFailed()      { c.workersFailed.Add(1) }
func (c *Collector) AddChunkVerified()     { c.chunksVerified.Add(1) }
func (c *Collector) AddChunkVerifyFailed() { c.chunksVerifyFailed.Add(1) }

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		BytesCopied:        c.bytesCopied.Load(),
		BuffersCopied:      c.buffersCopied.Load(),
		BytesTotal:         c.bytesTotal.Load(),
		WorkersStarted:     c.workersStarted.Load(),
		WorkersDone:        c.workersDone.Load(),
		WorkersFailed:      c.workersFailed.Load(),
		ChunksVerified:     c.chunksVerified.Load(),
		ChunksVerifyFailed: c.chunksVerifyFailed.Load(),
		Elapsed:            c.Elapsed(),
	}
}

// Tick snapshots the byte delta into the ring buffer. Called once per
// interval by the presenter.
func (c *Collector) Tick() {
	current := c.bytesCopied.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastBytes
	c.lastBytes = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes per tick over the last n samples.
func (c *Collector) RollingSpeed(n int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// History returns up to n most recent tick samples, oldest first.
func (c *Collector) History(n int) []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	out := make([]int64, count)
	for i := range count {
		idx := (c.ringIdx - count + i + ringSize) % ringSize
		out[i] = c.throughput[idx]
	}
	return out
}

// Busy returns the number of workers started but not yet finished.
func (c *Collector) Busy() int64 {
	return c.workersStarted.Load() - c.workersDone.Load() - c.workersFailed.Load()
}

// ETA estimates remaining time from the rolling speed, assuming one tick
// per second.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesCopied.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining) / speed * float64(time.Second))
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"bytes=%d/%d buffers=%d workers=%d/%d failed=%d verified=%d mismatched=%d",
		s.BytesCopied, s.BytesTotal, s.BuffersCopied,
		s.WorkersDone, s.WorkersStarted, s.WorkersFailed,
		s.ChunksVerified, s.ChunksVerifyFailed,
	)
}
