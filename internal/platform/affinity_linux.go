//go:build linux

package platform

import "golang.org/x/sys/unix"

// PinToCPU restricts the calling OS thread to a single logical CPU. Callers
// must hold runtime.LockOSThread for the setting to stick to a goroutine.
func PinToCPU(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
