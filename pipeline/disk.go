package pipeline

import (
	"golang.org/x/sys/unix"
)

type DiskChecker interface {
	FreeBytes(path string) (int64, error)
}

type statfsChecker struct{}

func NewDiskChecker() DiskChecker {
	return statfsChecker{}
}

func (statfsChecker) FreeBytes(path string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}
