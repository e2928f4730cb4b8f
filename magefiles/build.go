//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Validates every GLSL source under assets/shaders with glslangValidator.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the testbed binary into bin/.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", filepath.Join("bin", "lumen"), "."), withStream())
	return err
}

// Runs go mod tidy.
func (Build) Deps() error {
	return goTidy()
}
