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

	"dxeventgen/internal/config"
	"dxeventgen/internal/domain"
	"dxeventgen/internal/enums"

	"github.com/spf13/cobra"
)

const appName = "dxeventgen"

var (
	flagEnumDir string
	flagLang    string
	flagCatalog string

	// appCfg is the effective configuration execute was started with; the
	// config subcommands report and persist it.
	appCfg config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Compile YAML event descriptions into Taikou Risshiden 5 event source",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// execute wires config defaults into the flag set and runs the CLI.
func execute(cfg config.AppConfig) error {
	appCfg = cfg
	rootCmd.PersistentFlags().StringVar(&flagEnumDir, "enums", cfg.Compile.EnumDir, "directory with enum category files")
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", cfg.Compile.Language, "output token language (tc, sc, jp)")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", cfg.Compile.Catalog, "sqlite build catalog path (empty disables)")

	rootCmd.AddCommand(compileCmd, checkCmd, enumsCmd, configCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return err
	}
	return nil
}

// loadPipeline resolves the common front half of compile/check: language
// and registry.
func loadPipeline() (enums.Language, *enums.Registry, error) {
	lang, err := enums.ParseLanguage(flagLang)
	if err != nil {
		return "", nil, err
	}
	reg, err := enums.LoadDir(flagEnumDir)
	if err != nil {
		return "", nil, err
	}
	return lang, reg, nil
}

// printDiags writes diagnostics in a stable one-per-line form.
func printDiags(diags []domain.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}
