// Copyright the eqlog-go authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package build finds theory source files under a root directory. It is
// deliberately minimal: a real host build system's "process_root" step
// (dependency graphs, incremental rebuilds, module resolution) is out of
// scope; this package only has to supply `eqlog build` with the list of
// files it needs to compile.
package build

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Walker discovers theory source files under a root.
type Walker interface {
	Walk(root string) ([]string, error)
}

// Ext is the file extension recognized as a theory source file.
const Ext = ".eqlog"

// DirWalker is the default Walker: a filepath.WalkDir over the filesystem,
// collecting every file whose extension is Ext, sorted for reproducible
// build order.
type DirWalker struct{}

// Walk implements Walker.
func (DirWalker) Walk(root string) ([]string, error) {
	var files []string
	//
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		//
		if d.IsDir() || strings.ToLower(filepath.Ext(path)) != Ext {
			return nil
		}
		//
		files = append(files, path)
		//
		return nil
	})
	//
	if err != nil {
		return nil, err
	}
	//
	sort.Strings(files)
	//
	return files, nil
}
