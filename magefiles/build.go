//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the stream server and the token tool into bin/.
func (Build) Server() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/rim-server", "./cmd/server"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/rim-token", "./cmd/token"), withStream()); err != nil {
		return err
	}
	return nil
}

// Builds the in-browser engine to bin/rim.wasm.
func (Build) Wasm() error {
	_, err := executeCmd("go",
		withArgs("build", "-o", "bin/rim.wasm", "./cmd/wasm"),
		withEnv("GOOS=js", "GOARCH=wasm"),
		withStream(),
	)
	return err
}

// Builds every binary.
func (Build) All() {
	mg.Deps(Build.Server, Build.Wasm)
}
