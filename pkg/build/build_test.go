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
package build

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirWalkerFindsTheoryFiles(t *testing.T) {
	root := t.TempDir()
	//
	if err := os.WriteFile(filepath.Join(root, "a.eqlog"), []byte("sort E;"), 0o644); err != nil {
		t.Fatal(err)
	}
	//
	if err := os.WriteFile(filepath.Join(root, "readme.txt"), []byte("not a theory"), 0o644); err != nil {
		t.Fatal(err)
	}
	//
	sub := filepath.Join(root, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	//
	if err := os.WriteFile(filepath.Join(sub, "b.eqlog"), []byte("sort F;"), 0o644); err != nil {
		t.Fatal(err)
	}
	//
	files, err := DirWalker{}.Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	//
	if len(files) != 2 {
		t.Fatalf("expected 2 theory files, got %d: %v", len(files), files)
	}
	//
	for _, f := range files {
		if filepath.Ext(f) != Ext {
			t.Fatalf("unexpected file in results: %s", f)
		}
	}
}

func TestDirWalkerEmptyDir(t *testing.T) {
	root := t.TempDir()
	//
	files, err := DirWalker{}.Walk(root)
	if err != nil {
		t.Fatal(err)
	}
	//
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
}
