//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Gather rebuilds the knowledge base from knowledge/, docs/, and the repository.
func Gather() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "gather")
}

// Export writes knowledge/index/export.yaml from the current snapshot.
func Export() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "export", "--format", "yaml")
}

// Describe prints the repository outline.
func Describe() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "describe", ".")
}
