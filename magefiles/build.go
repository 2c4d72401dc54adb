//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the GLSL shaders to SPIR-V.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the engine binary.
func (Build) Engine() error {
	if err := buildShaders(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "prisma", "main.go"), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	if _, err := executeCmd("glslc", withArgs("assets/shaders/cube.vert", "-o", "assets/shaders/cube.vert.spv"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("glslc", withArgs("assets/shaders/cube.frag", "-o", "assets/shaders/cube.frag.spv"), withStream()); err != nil {
		return err
	}
	return nil
}
