package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errBuf.String(), err
}

func TestExitCodeForCliError(t *testing.T) {
	t.Parallel()
	err := fail(codeLintFailed, "boom")
	if got := exitCodeFor(err); got != codeLintFailed {
		t.Errorf("exitCodeFor(cliError) = %d, want %d", got, codeLintFailed)
	}
}

func TestExitCodeForPlainError(t *testing.T) {
	t.Parallel()
	if got := exitCodeFor(errors.New("plain")); got != codeError {
		t.Errorf("exitCodeFor(plain error) = %d, want %d", got, codeError)
	}
}

func TestRunGidSplitOutputsFields(t *testing.T) {
	t.Parallel()
	out, _, err := runCLI(t, "--gidsplit", "4CC7BE4419880B9E009C9D7C")
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	want := "user=76, pid=199, random=10263932, seq=48708"
	if !strings.Contains(out, want) {
		t.Errorf("gidsplit output = %q, want it to contain %q", out, want)
	}
}

func TestRunGidSplitRejectsMalformedGid(t *testing.T) {
	t.Parallel()
	_, _, err := runCLI(t, "--gidsplit", "not-a-gid")
	if err == nil {
		t.Fatal("Execute() with a malformed gid succeeded, want error")
	}
	if got := exitCodeFor(err); got != codeError {
		t.Errorf("exitCodeFor(err) = %d, want %d", got, codeError)
	}
}

func TestRunConvertToJSON(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "project.pbxproj")
	src := "{ a = b; objects = { }; }\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	out, _, err := runCLI(t, "--convert", "json", path)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(out, `"a"`) || !strings.Contains(out, `"b"`) {
		t.Errorf("json output = %q, missing expected fields", out)
	}
}

func TestRunLintDetectsMismatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "project.pbxproj")
	// Non-canonical spacing: lint must report a round-trip mismatch.
	src := "{ a=b; objects={}; }\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	_, errOut, err := runCLI(t, "--lint", path)
	if err == nil {
		t.Fatal("Execute() with non-canonical input succeeded, want lint failure")
	}
	if got := exitCodeFor(err); got != codeLintFailed {
		t.Errorf("exitCodeFor(err) = %d, want %d", got, codeLintFailed)
	}
	if !strings.Contains(errOut, "round-trip mismatch") {
		t.Errorf("stderr = %q, want round-trip mismatch message", errOut)
	}
}

func TestRunLintOnCanonicalFileProducesNoOutput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "project.pbxproj")
	src := "// !$*UTF8*$!\n{\n\ta = b;\n\tobjects = {\n\t};\n}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	out, errOut, err := runCLI(t, "--lint", path)
	if err != nil {
		t.Fatalf("Execute() on a canonical file failed: %v", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty on successful lint", out)
	}
	if errOut != "" {
		t.Errorf("stderr = %q, want empty on successful lint", errOut)
	}
}

func TestRunLintOnJSONFileReportsUnreadableFormat(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "project.json")
	if err := os.WriteFile(path, []byte(`{"a": "b"}`), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	out, _, err := runCLI(t, "--lint", path)
	if err == nil {
		t.Fatal("Execute() linting a json file succeeded, want lint failure")
	}
	if got := exitCodeFor(err); got != codeLintFailed {
		t.Errorf("exitCodeFor(err) = %d, want %d", got, codeLintFailed)
	}
	want := "is in json which is nothing that Xcode can read.\n"
	if !strings.HasSuffix(out, want) {
		t.Errorf("stdout = %q, want suffix %q", out, want)
	}
}

func TestRunLintOnXMLFileReportsFailedLint(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "project.xml")
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>a</key>
	<string>b</string>
</dict>
</plist>
`
	if err := os.WriteFile(path, []byte(xml), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	out, _, err := runCLI(t, "--lint", path)
	if err == nil {
		t.Fatal("Execute() linting an xml file succeeded, want lint failure")
	}
	if got := exitCodeFor(err); got != codeLintFailed {
		t.Errorf("exitCodeFor(err) = %d, want %d", got, codeLintFailed)
	}
	want := "is in XML which is a clearly a failed lint.\n"
	if !strings.HasSuffix(out, want) {
		t.Errorf("stdout = %q, want suffix %q", out, want)
	}
}

func TestRunMissingFileArg(t *testing.T) {
	t.Parallel()
	_, _, err := runCLI(t)
	if err == nil {
		t.Fatal("Execute() with no args succeeded, want error")
	}
	if got := exitCodeFor(err); got != codeError {
		t.Errorf("exitCodeFor(err) = %d, want %d", got, codeError)
	}
}

func TestRunConvertMissingInputFile(t *testing.T) {
	t.Parallel()
	_, _, err := runCLI(t, filepath.Join(t.TempDir(), "missing.pbxproj"))
	if err == nil {
		t.Fatal("Execute() on a missing file succeeded, want error")
	}
	if got := exitCodeFor(err); got != codeError {
		t.Errorf("exitCodeFor(err) = %d, want %d", got, codeError)
	}
}
