//go:build !linux && !darwin

package core

import "syscall"

func listenControl(network, address string, c syscall.RawConn) error {
	return nil
}
