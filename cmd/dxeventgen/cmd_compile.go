/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"dxeventgen/internal/catalog"
	"dxeventgen/internal/compiler"
	"dxeventgen/internal/emit"
	applog "dxeventgen/internal/log"
	"dxeventgen/internal/script"

	"github.com/spf13/cobra"
)

var flagForce bool

var compileCmd = &cobra.Command{
	Use:   "compile <input.yaml> <output.txt>",
	Short: "Compile one event description to engine event source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inPath, outPath := args[0], args[1]
		l := applog.WithOperation(applog.WithComponent("cli"), "compile").With(
			slog.String("input", inPath),
			slog.String("output", outPath),
		)

		lang, reg, err := loadPipeline()
		if err != nil {
			return err
		}

		source, err := os.ReadFile(inPath)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		sourceHash := hashBytes(source)

		var cat *catalog.Catalog
		if flagCatalog != "" {
			cat, err = catalog.Open(flagCatalog)
			if err != nil {
				return err
			}
			defer cat.Close()

			if !flagForce {
				if rec, ok, err := cat.Get(context.Background(), inPath); err == nil && ok &&
					rec.SourceHash == sourceHash && rec.OutputPath == outPath &&
					fileMatchesHash(rec.OutputPath, rec.OutputHash) {
					l.Info("source and output unchanged, skipping", slog.String("hash", sourceHash[:12]))
					fmt.Printf("Up to date: %s\n", outPath)
					return nil
				}
			}
		}

		doc, diags := script.Decode(source)
		if len(diags) == 0 {
			var prog *compiler.Program
			prog, diags = compiler.Compile(doc, reg, lang)
			if len(diags) == 0 {
				data, err := emit.WriteFile(outPath, prog)
				if err != nil {
					return err
				}
				if cat != nil {
					rec := catalog.Record{
						EventName:  doc.Name,
						SourcePath: inPath,
						SourceHash: sourceHash,
						OutputPath: outPath,
						OutputHash: hashBytes(data),
						CompiledAt: time.Now(),
					}
					if err := cat.Put(context.Background(), rec); err != nil {
						l.Warn("catalog update failed", slog.Any("err", err))
					}
				}
				fmt.Printf("Generated: %s\n", outPath)
				return nil
			}
		}

		// Diagnostics mean zero output bytes: the output path is not touched.
		printDiags(diags)
		return fmt.Errorf("%d issue(s) in %s", len(diags), inPath)
	},
}

func init() {
	compileCmd.Flags().BoolVar(&flagForce, "force", false, "recompile even if the catalog says the source is unchanged")
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// fileMatchesHash reports whether the file at path still has the recorded
// content hash. A missing, unreadable or edited file fails the check, so a
// corrupted output is recompiled rather than reported up to date.
func fileMatchesHash(path, hash string) bool {
	data, err := os.ReadFile(path)
	return err == nil && hashBytes(data) == hash
}
