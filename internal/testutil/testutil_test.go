// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	root := WriteFiles(t, t.TempDir(), map[string]string{
		"pkg/__init__.cue": "",
		"pkg/sub/mod.cue":  "description: \"x\"\n",
	})

	data, err := os.ReadFile(filepath.Join(root, "pkg", "sub", "mod.cue"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "description: \"x\"\n" {
		t.Errorf("content = %q", data)
	}
	if info, err := os.Stat(filepath.Join(root, "pkg", "__init__.cue")); err != nil || info.Size() != 0 {
		t.Errorf("marker stat = %v, %v", info, err)
	}
}

func TestMustSetenv_Restores(t *testing.T) {
	const key = "SCITEST_TESTUTIL_PROBE"
	restore := MustSetenv(t, key, "on")
	if got := os.Getenv(key); got != "on" {
		t.Fatalf("Getenv() = %q, want on", got)
	}
	restore()
	if _, ok := os.LookupEnv(key); ok {
		t.Error("variable should be unset after restore")
	}
}

func TestMustChdir_Restores(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	restore := MustChdir(t, dir)
	wd, _ := os.Getwd()
	if resolved, _ := filepath.EvalSymlinks(dir); wd != dir && wd != resolved {
		t.Errorf("Getwd() = %q, want %q", wd, dir)
	}
	restore()
	if wd, _ := os.Getwd(); wd != orig {
		t.Errorf("Getwd() = %q after restore, want %q", wd, orig)
	}
}
