//go:build !linux

package platform

// PinToCPU is a no-op outside Linux; macOS only offers affinity tags.
func PinToCPU(_ int) error {
	return ErrAffinityUnsupported
}
