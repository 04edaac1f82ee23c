// Copyright (c) 2017-2026 Digital Asset (Switzerland) GmbH and/or its affiliates. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"pim.dev/x/pim/pkg/utils"
)

const (
	Table = "table"
	Json  = "json"
)

func AddFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "output", "o", Table, "output format: json, table")
}

// Print writes v as indented json, or the result of table otherwise
func Print(p utils.RawPrinter, format string, v any, table func() string) error {
	switch format {
	case Table:
		p.Println(table())
	case Json:
		data, err := json.MarshalIndent(v, "", "    ")
		if err != nil {
			return err
		}
		p.Println(string(data))
	default:
		return fmt.Errorf("output format not supported: %s", format)
	}
	return nil
}
