/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package emit serializes a compiled Program into the engine's event
// source form: tab-indented text, UTF-16LE with a leading byte-order
// marker. Emission is total and order-preserving; instruction N always
// appears before instruction N+1.
package emit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dxeventgen/internal/compiler"
	applog "dxeventgen/internal/log"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Render produces the textual instruction stream. One tab per nesting
// level; block instructions open a brace on their own line and close with
// a brace line at the opening depth; LF line endings.
func Render(p *compiler.Program) string {
	var b strings.Builder
	renderInto(&b, p.Instructions, 0)
	return b.String()
}

func renderInto(b *strings.Builder, ins []compiler.Instruction, depth int) {
	indent := strings.Repeat("\t", depth)
	for _, in := range ins {
		b.WriteString(indent)
		b.WriteString(in.Text)
		if in.Block {
			b.WriteString("{")
		}
		b.WriteString("\n")
		if in.Block {
			renderInto(b, in.Body, depth+1)
			b.WriteString(indent)
			b.WriteString("}\n")
		}
	}
}

// Encode converts rendered text into the required on-disk bytes:
// UTF-16 little-endian code units behind a BOM.
func Encode(text string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	out, _, err := transform.Bytes(enc, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("utf-16 encode: %w", err)
	}
	return out, nil
}

// WriteFile renders, encodes and writes the program to path. The write is
// transactional: bytes land in a temp file in the target directory and are
// renamed into place, so a failed run never leaves a partial or corrupt
// file for the engine to choke on.
func WriteFile(path string, p *compiler.Program) ([]byte, error) {
	l := applog.WithOperation(applog.WithComponent("emit"), "write").With(
		slog.String("path", path),
		slog.String("event", p.EventName),
	)

	data, err := Encode(Render(p))
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return nil, fmt.Errorf("replace output file: %w", err)
	}
	l.Info("event source written", slog.Int("bytes", len(data)))
	return data, nil
}
