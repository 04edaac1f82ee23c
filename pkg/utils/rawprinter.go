// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// RawPrinter is the user-facing output channel; *cobra.Command satisfies it
type RawPrinter interface {
	Println(i ...interface{})
	Printf(format string, i ...interface{})
	PrintErrln(i ...interface{})
}

// WriterPrinter prints to arbitrary writers; the zero value prints to stdout/stderr
type WriterPrinter struct {
	Out, Err io.Writer
}

func (s WriterPrinter) out() io.Writer {
	if s.Out == nil {
		return os.Stdout
	}
	return s.Out
}

func (s WriterPrinter) err() io.Writer {
	if s.Err == nil {
		return os.Stderr
	}
	return s.Err
}

func (s WriterPrinter) Println(i ...interface{}) {
	fmt.Fprintln(s.out(), i...)
}

func (s WriterPrinter) Printf(format string, i ...interface{}) {
	fmt.Fprintf(s.out(), format, i...)
}

func (s WriterPrinter) PrintErrln(i ...interface{}) {
	fmt.Fprintln(s.err(), i...)
}

// DiscardPrinter swallows all output
var DiscardPrinter RawPrinter = WriterPrinter{Out: io.Discard, Err: io.Discard}

var _ RawPrinter = (*WriterPrinter)(nil)
var _ RawPrinter = (*cobra.Command)(nil)
