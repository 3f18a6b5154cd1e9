package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	TransferStarted Type = iota + 1
	WorkerStarted
	WorkerCompleted
	WorkerFailed
	VerifyStarted
	VerifyOK
	VerifyFailed
)

var typeNames = [...]string{
	TransferStarted: "TransferStarted",
	WorkerStarted:   "WorkerStarted",
	WorkerCompleted: "WorkerCompleted",
	WorkerFailed:    "WorkerFailed",
	VerifyStarted:   "VerifyStarted",
	VerifyOK:        "VerifyOK",
	VerifyFailed:    "VerifyFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress event from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Worker    int   // worker index; CPU it was pinned to
	SrcOffset int64 // byte offset of the worker's chunk in the source
	DstOffset int64 // byte offset of the worker's chunk in the destination
	Size      int64 // chunk bytes, or bytes moved (WorkerCompleted/WorkerFailed)
	Total     int64 // planned bytes across all workers (TransferStarted)
	Workers   int   // worker count (TransferStarted)
	Error     error
}
