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

	"github.com/spf13/cobra"
)

var enumsCmd = &cobra.Command{
	Use:   "enums [category]",
	Short: "List registry categories, or the identifiers of one category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, reg, err := loadPipeline()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			for _, cat := range reg.Categories() {
				fmt.Printf("%s\t%d entries\n", cat, reg.Len(cat))
			}
			return nil
		}

		cat := args[0]
		known := false
		for _, c := range reg.Categories() {
			if c == cat {
				known = true
			}
		}
		if !known {
			return fmt.Errorf("unknown category %q (have: %v)", cat, reg.Categories())
		}
		for _, key := range reg.Keys(cat) {
			entry, _ := reg.Lookup(cat, key)
			fmt.Printf("%s\t%s\n", key, entry.Text.Get(lang))
		}
		return nil
	},
}
