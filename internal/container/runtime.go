// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs document converters packaged as container images
// on docker or podman.
package container

import (
	"fmt"
	"io"
	"os/exec"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime provides the container operations the converters need.
type Runtime interface {
	// Name returns the runtime binary ("docker" or "podman").
	Name() string

	// Available reports whether the binary is on PATH and answers "info".
	Available() bool

	// ImageExists returns nil when image is present locally.
	ImageExists(image string) error

	// Run starts image with networking disabled, feeding stdin and
	// collecting stdout. args follow the image and reach its entrypoint.
	Run(image string, stdin io.Reader, stdout io.Writer, args ...string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

// cli implements Runtime for one container binary. Docker and podman
// differ only in the subcommand that checks for an image.
type cli struct {
	bin        string
	imageCheck []string
	exec       executor
}

func (c *cli) Name() string { return c.bin }

func (c *cli) Available() bool {
	if _, err := c.exec.LookPath(c.bin); err != nil {
		return false
	}
	return c.exec.RunSilent(c.bin, "info") == nil
}

func (c *cli) ImageExists(image string) error {
	args := append(append([]string{}, c.imageCheck...), image)
	if err := c.exec.RunSilent(c.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, c.bin, err)
	}
	return nil
}

func (c *cli) Run(image string, stdin io.Reader, stdout io.Writer, args ...string) error {
	argv := append([]string{"run", "--rm", "-i", "--network=none", image}, args...)
	if err := c.exec.RunPiped(c.bin, argv, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", c.bin, image, err)
	}
	return nil
}

func newCLI(bin string, exec executor) *cli {
	c := &cli{bin: bin, exec: exec}
	switch bin {
	case binPodman:
		c.imageCheck = []string{"image", "exists"}
	default:
		c.imageCheck = []string{"image", "inspect"}
	}
	return c
}

var defaultExec executor = osExecutor{}

// DetectRuntime returns the preferred runtime ("docker" or "podman") when
// it works. An empty preference tries docker first, then podman.
func DetectRuntime(preferred string) (Runtime, error) {
	return detectRuntime(defaultExec, preferred)
}

func detectRuntime(exec executor, preferred string) (Runtime, error) {
	candidates := []string{binDocker, binPodman}
	switch preferred {
	case "":
	case binDocker, binPodman:
		candidates = []string{preferred}
	default:
		return nil, fmt.Errorf("unknown container runtime %q: use %s or %s", preferred, binDocker, binPodman)
	}

	for _, bin := range candidates {
		if c := newCLI(bin, exec); c.Available() {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available: tried %v", candidates)
}
