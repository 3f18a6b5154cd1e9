//go:build !unix

package platform

import "os"

func CanRead(path string) error {
	_, err := os.Stat(path)
	return err
}

func CanWrite(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm()&0o200 == 0 {
		return os.ErrPermission
	}
	return nil
}
