/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"os"

	"dxeventgen/internal/compiler"
	"dxeventgen/internal/script"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <input.yaml>...",
	Short: "Validate event descriptions without writing output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, reg, err := loadPipeline()
		if err != nil {
			return err
		}

		failed := 0
		for _, inPath := range args {
			source, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			doc, diags := script.Decode(source)
			if len(diags) == 0 {
				_, diags = compiler.Compile(doc, reg, lang)
			}
			if len(diags) > 0 {
				fmt.Fprintf(os.Stderr, "%s:\n", inPath)
				printDiags(diags)
				failed++
				continue
			}
			fmt.Printf("OK: %s\n", inPath)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
		}
		return nil
	},
}
