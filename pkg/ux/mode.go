// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Mode defines the richness of CLI output
type Mode string

const (
	// ModeRich enables colors, icons, styled tables, and boxes
	ModeRich Mode = "rich"

	// ModeMinimal uses icons and basic formatting only
	ModeMinimal Mode = "minimal"

	// ModeMachine outputs plain text suitable for scripting and parsing
	ModeMachine Mode = "machine"
)

var (
	currentMode = ModeRich
	modeMu      sync.RWMutex
)

// CurrentMode returns the active output mode
func CurrentMode() Mode {
	modeMu.RLock()
	defer modeMu.RUnlock()
	return currentMode
}

// SetMode updates the active output mode
func SetMode(m Mode) {
	modeMu.Lock()
	defer modeMu.Unlock()
	currentMode = m
}

// ParseMode converts a string to a Mode
func ParseMode(s string) Mode {
	switch strings.ToLower(s) {
	case "rich", "r", "full":
		return ModeRich
	case "minimal", "min", "m":
		return ModeMinimal
	case "machine", "plain", "quiet", "q":
		return ModeMachine
	default:
		return ModeRich
	}
}

// InitMode initializes the output mode from environment and terminal state
func InitMode() {
	// Explicit override wins
	if envMode := os.Getenv("QUADCOUNT_OUTPUT"); envMode != "" {
		SetMode(ParseMode(envMode))
		return
	}

	// Piped or redirected stdout gets machine output
	if !isTerminal() {
		SetMode(ModeMachine)
		return
	}

	SetMode(ModeRich)
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive returns true if full-screen progress rendering is viable
func IsInteractive() bool {
	return CurrentMode() != ModeMachine && isTerminal()
}

// ShouldShowProgress returns true if progress indicators should render
func ShouldShowProgress() bool {
	return CurrentMode() != ModeMachine
}
