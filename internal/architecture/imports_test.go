package architecture_test

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

type importRef struct {
	file string
	imp  string
}

// Layers listed here may not import the given module-relative prefixes.
var layerRules = []struct {
	prefix     string
	disallowed []string
}{
	{"internal/pkg/", []string{"internal/domain", "internal/data/", "internal/services", "internal/http/", "internal/app"}},
	{"internal/domain/", []string{"internal/data/", "internal/platform/", "internal/services", "internal/http/", "internal/jobs/", "internal/app"}},
	{"internal/platform/", []string{"internal/data/", "internal/services", "internal/http/", "internal/jobs/", "internal/app"}},
	{"internal/data/", []string{"internal/services", "internal/http/", "internal/jobs/", "internal/realtime", "internal/app"}},
	{"internal/services/", []string{"internal/http/", "internal/jobs/", "internal/temporalx", "internal/app"}},
	{"internal/jobs/", []string{"internal/http/", "internal/app"}},
	{"internal/http/", []string{"internal/jobs/", "internal/temporalx", "internal/app"}},
}

func TestImportBoundaries(t *testing.T) {
	root, modulePath := moduleRoot(t)
	refs := collectImports(t, root, modulePath)

	var b strings.Builder
	for _, r := range refs {
		for _, rule := range layerRules {
			if !strings.HasPrefix(r.file, rule.prefix) {
				continue
			}
			for _, bad := range rule.disallowed {
				if strings.HasPrefix(r.imp, bad) {
					fmt.Fprintf(&b, "- %s imports %q (disallowed: %q)\n", r.file, r.imp, bad)
				}
			}
		}
	}
	if b.Len() > 0 {
		t.Fatal("import boundary violations:\n" + b.String())
	}
}

func TestOnlyCommandsImportApp(t *testing.T) {
	root, modulePath := moduleRoot(t)

	var b strings.Builder
	for _, r := range collectImports(t, root, modulePath) {
		if strings.HasPrefix(r.imp, "internal/app") && !strings.HasPrefix(r.file, "cmd/") && !strings.HasPrefix(r.file, "internal/app/") {
			fmt.Fprintf(&b, "- %s imports %q\n", r.file, r.imp)
		}
	}
	if b.Len() > 0 {
		t.Fatal("internal/app is the composition root and may only be imported from cmd/:\n" + b.String())
	}
}

// collectImports returns module-internal imports with both sides relative to root.
func collectImports(t *testing.T, root, modulePath string) []importRef {
	t.Helper()
	fset := token.NewFileSet()
	var refs []importRef

	for _, dir := range []string{"cmd", "internal"} {
		walkErr := filepath.WalkDir(filepath.Join(root, dir), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), "_") || d.Name() == "vendor" {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".go") {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
			if err != nil {
				return err
			}
			for _, spec := range f.Imports {
				imp, err := strconv.Unquote(spec.Path.Value)
				if err != nil || !strings.HasPrefix(imp, modulePath+"/") {
					continue
				}
				refs = append(refs, importRef{file: filepath.ToSlash(rel), imp: strings.TrimPrefix(imp, modulePath+"/")})
			}
			return nil
		})
		if walkErr != nil {
			t.Fatalf("walk %s/: %v", dir, walkErr)
		}
	}
	return refs
}

func moduleRoot(t *testing.T) (string, string) {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	root, err := findModuleRoot(start)
	if err != nil {
		t.Fatalf("find module root: %v", err)
	}
	modulePath, err := readModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		t.Fatalf("read module path: %v", err)
	}
	return root, modulePath
}

func findModuleRoot(start string) (string, error) {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found from %s", start)
		}
		dir = parent
	}
}

func readModulePath(goModPath string) (string, error) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if mp, ok := strings.CutPrefix(line, "module "); ok {
			if mp = strings.TrimSpace(mp); mp == "" {
				return "", fmt.Errorf("empty module path in %s", goModPath)
			}
			return mp, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in %s", goModPath)
}
