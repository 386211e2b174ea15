// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the sqlferry CLI application.
// It runs SQL against local replicas or hosted databases and moves dumps in and out of them.
package main

import (
	"sqlferry/cli/cmd"
)

func main() {
	cmd.Execute()
}
