//go:build linux

package i2c

import (
	"context"
	"fmt"
	"path/filepath"

	mfrc522 "github.com/ZaparooProject/go-mfrc522"
	"golang.org/x/sys/unix"
)

const (
	// I2CSlave is the ioctl command to set the I2C slave address
	I2CSlave = 0x0703

	// I2CFuncs is the ioctl command to get adapter functionality
	I2CFuncs = 0x0705

	// I2CFuncI2C indicates plain I2C support
	I2CFuncI2C = 0x00000001
)

// devScanner talks to /dev/i2c-* through the i2c-dev ioctl interface.
type devScanner struct{}

func newPlatformScanner() busScanner {
	return devScanner{}
}

// Buses returns the adapters that support plain I2C transfers
func (devScanner) Buses() ([]string, error) {
	matches, err := filepath.Glob("/dev/i2c-*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan for I2C devices: %w", err)
	}

	buses := make([]string, 0, len(matches))
	for _, path := range matches {
		if unix.Access(path, unix.R_OK|unix.W_OK) != nil {
			continue
		}

		fd, err := unix.Open(path, unix.O_RDWR, 0)
		if err != nil {
			continue
		}
		funcs, err := unix.IoctlGetUint32(fd, I2CFuncs)
		_ = unix.Close(fd)
		if err != nil || funcs&I2CFuncI2C == 0 {
			continue
		}

		buses = append(buses, path)
	}
	return buses, nil
}

// Scan returns the addresses in [first, last] that acknowledge a one byte read
func (devScanner) Scan(busPath string, first, last uint16) []uint16 {
	var found []uint16

	fd, err := unix.Open(busPath, unix.O_RDWR, 0)
	if err != nil {
		return found
	}
	defer func() { _ = unix.Close(fd) }()

	buf := make([]byte, 1)
	for addr := first; addr <= last; addr++ {
		if err := unix.IoctlSetInt(fd, I2CSlave, int(addr)); err != nil {
			continue
		}
		if _, err := unix.Read(fd, buf); err == nil {
			found = append(found, addr)
		}
	}
	return found
}

// ReadVersion reads the version register of the chip at addr
func (devScanner) ReadVersion(ctx context.Context, busPath string, addr uint16) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fd, err := unix.Open(busPath, unix.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", busPath, err)
	}
	defer func() { _ = unix.Close(fd) }()

	if err := unix.IoctlSetInt(fd, I2CSlave, int(addr)); err != nil {
		return 0, fmt.Errorf("select address 0x%02X: %w", addr, err)
	}
	if _, err := unix.Write(fd, []byte{byte(mfrc522.RegVersion)}); err != nil {
		return 0, fmt.Errorf("write version address: %w", err)
	}
	buf := make([]byte, 1)
	if _, err := unix.Read(fd, buf); err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return buf[0], nil
}
