// Package clierr carries exit codes and user-facing hints from commands to
// main.
package clierr

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

type ExitCode int

const (
	ExitCodeSuccess      ExitCode = 0
	ExitCodeGeneral      ExitCode = 1
	ExitCodeConfig       ExitCode = 2
	ExitCodeStorage      ExitCode = 3
	ExitCodeNotFound     ExitCode = 4
	ExitCodeValidation   ExitCode = 5
	ExitCodeFile         ExitCode = 6
	ExitCodeCancellation ExitCode = 7
	ExitCodeUnsupported  ExitCode = 8
)

type Error struct {
	Code       ExitCode
	Message    string
	Underlying error
	Suggestion string
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func New(code ExitCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code ExitCode, message string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Underlying: err}
}

func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// CodeOf returns the exit code carried by err, or ExitCodeGeneral.
func CodeOf(err error) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ExitCodeGeneral
}

// HandleReturn logs err, prints it to w, and returns the exit code. The
// caller is responsible for exiting.
func HandleReturn(err error, w io.Writer, log zerolog.Logger) ExitCode {
	if err == nil {
		return ExitCodeSuccess
	}

	message := err.Error()
	suggestion := ""
	var e *Error
	if errors.As(err, &e) {
		message = e.Error()
		suggestion = e.Suggestion
		log.Error().Err(e.Underlying).Int("code", int(e.Code)).Msg(e.Message)
	} else {
		log.Error().Msg(message)
	}

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(w)
	_, _ = red.Fprint(w, "Error: ")
	fmt.Fprintln(w, message)

	if suggestion != "" {
		_, _ = yellow.Fprint(w, "Suggestion: ")
		for i, line := range strings.Split(suggestion, "\n") {
			if i == 0 {
				fmt.Fprintln(w, line)
			} else {
				fmt.Fprintln(w, "            "+line)
			}
		}
	}
	fmt.Fprintln(w)

	return CodeOf(err)
}
