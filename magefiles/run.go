//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the stream server with the environment's configuration.
func (Run) Server() error {
	fmt.Println("Run server...")
	if _, err := executeCmd("go", withArgs("run", "./cmd/server"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests, with the race detector when -v is set.
func Test() error {
	args := []string{"test", "./..."}
	if mg.Verbose() {
		args = []string{"test", "-race", "-v", "./..."}
	}
	_, err := executeCmd("go", withArgs(args...), withStream())
	return err
}
