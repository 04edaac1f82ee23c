// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vcs

import (
	"errors"
	"log/slog"
	"net/url"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/jdx/go-netrc"
)

// AuthFunc picks credentials for a remote URL; nil means anonymous
type AuthFunc func(remoteURL string) transport.AuthMethod

// NetrcAuth reads HTTPS basic auth credentials from the netrc file at path.
// A missing file, an unreadable file, or a remote without a matching machine entry all yield no credentials.
func NetrcAuth(path string) AuthFunc {
	if path == "" {
		return noAuth
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return noAuth
	}
	n, err := netrc.Parse(path)
	if err != nil {
		slog.Warn("ignoring unreadable netrc file", "path", path, "error", err)
		return noAuth
	}

	return func(remoteURL string) transport.AuthMethod {
		u, err := url.Parse(remoteURL)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
			return nil
		}
		machine := n.Machine(u.Hostname())
		if machine == nil {
			return nil
		}
		login, password := machine.Get("login"), machine.Get("password")
		if login == "" && password == "" {
			return nil
		}
		return &http.BasicAuth{Username: login, Password: password}
	}
}

func noAuth(string) transport.AuthMethod {
	return nil
}
