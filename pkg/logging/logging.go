// Copyright (c) 2017-2025 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"io"
	"log/slog"
	"os"

	"pim.dev/x/pim/pkg/pimconfig"
)

func InitLogging() error {
	return InitLoggingTo(os.Stderr)
}

// InitLoggingTo installs the default slog logger writing to w, honouring PIM_LOG_LEVEL
func InitLoggingTo(w io.Writer) error {
	logLevel, ok := os.LookupEnv(pimconfig.LogLevelEnvVar)
	if !ok {
		return initLogging(w, "info")
	}
	return initLogging(w, logLevel)
}

func initLogging(w io.Writer, logLevel string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(logLevel)); err != nil {
		return err
	}

	slogHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(slogHandler))
	return nil
}
