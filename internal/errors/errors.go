/*
MIT License

# Copyright (c) 2025 OcomSoft

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/
package errors

import (
	"fmt"
)

// Common error types for the checkmigrations tool

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

type GitError struct {
	Command string
	Message string
}

func (e GitError) Error() string {
	return fmt.Sprintf("git error while executing %q: %s", e.Command, e.Message)
}

type RenderError struct {
	Migration string
	Message   string
}

func (e RenderError) Error() string {
	return fmt.Sprintf("render error for migration %s: %s", e.Migration, e.Message)
}

type RuleError struct {
	Rule    string
	Message string
}

func (e RuleError) Error() string {
	return fmt.Sprintf("rule error for %s: %s", e.Rule, e.Message)
}

// Error wrapping helpers
func NewValidationError(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

func NewGitError(command, message string) error {
	return GitError{Command: command, Message: message}
}

func NewRenderError(migration, message string) error {
	return RenderError{Migration: migration, Message: message}
}

func NewRuleError(rule, message string) error {
	return RuleError{Rule: rule, Message: message}
}

// Utility functions for error checking
func IsValidationError(err error) bool {
	_, ok := err.(ValidationError)
	return ok
}

func IsGitError(err error) bool {
	_, ok := err.(GitError)
	return ok
}

func IsRenderError(err error) bool {
	_, ok := err.(RenderError)
	return ok
}

func IsRuleError(err error) bool {
	_, ok := err.(RuleError)
	return ok
}
