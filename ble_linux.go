//go:build linux
// +build linux

package main

import (
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/pkg/errors"
)

// BLEアダプタを開いて ble.Scan / ble.Dial のデフォルトにする
func initBleDevice() error {
	d, err := linux.NewDevice()
	if err != nil {
		return errors.Wrap(err, "can't init device")
	}
	ble.SetDefaultDevice(d)
	return nil
}
