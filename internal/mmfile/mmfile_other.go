//go:build !unix

// Package mmfile maps input files into memory where the platform allows it.
package mmfile

import "os"

// Map reads the whole file when mmap is not available.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
