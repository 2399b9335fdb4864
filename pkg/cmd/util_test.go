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
package cmd

import (
	"testing"

	"github.com/spf13/cobra"
)

func flaggedCommand() *cobra.Command {
	c := &cobra.Command{Use: "t"}
	c.Flags().Bool("strict", false, "")
	c.Flags().Uint("max-rounds", 0, "")
	//
	return c
}

func TestGetFlagReadsBoolFlag(t *testing.T) {
	c := flaggedCommand()
	//
	if getFlag(c, "strict") {
		t.Fatal("expected default false")
	}
	//
	if err := c.Flags().Set("strict", "true"); err != nil {
		t.Fatal(err)
	}
	//
	if !getFlag(c, "strict") {
		t.Fatal("expected true after Set")
	}
}

func TestGetUintReadsUintFlag(t *testing.T) {
	c := flaggedCommand()
	//
	if got := getUint(c, "max-rounds"); got != 0 {
		t.Fatalf("expected default 0, got %d", got)
	}
	//
	if err := c.Flags().Set("max-rounds", "7"); err != nil {
		t.Fatal(err)
	}
	//
	if got := getUint(c, "max-rounds"); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}
