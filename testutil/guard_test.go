package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func TestPredicates(t *testing.T) {
	cases := []struct {
		pred func(string) bool
		in   string
		want bool
	}{
		{InternalImportForbidden, "zookeeper/internal/core", true},
		{InternalImportForbidden, "zookeeper/pkg/domain", false},
		{PersistenceImportForbidden, "zookeeper/internal/infra/persistence/file", true},
		{PersistenceImportForbidden, "zookeeper/internal/core", false},
		{BackendDependencyForbidden, "github.com/aws/aws-sdk-go-v2/service/s3", true},
		{BackendDependencyForbidden, "go.etcd.io/bbolt", true},
		{BackendDependencyForbidden, "github.com/jackc/pgx/v5/stdlib", true},
		{BackendDependencyForbidden, "github.com/xeipuuv/gojsonschema", false},
		{BackendDependencyForbidden, "modernc.org/sqlitex", false},
	}
	for _, c := range cases {
		if got := c.pred(c.in); got != c.want {
			t.Fatalf("predicate(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestDirectImportViolationsIgnoresTestFilesAndSubdirs(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"main.go":      "package tmp\nimport \"fmt\"\nfunc X(){fmt.Println(1)}",
		"main_test.go": "package tmp\nimport \"forbidden/pkg\"\n",
		"notes.txt":    "import \"forbidden/pkg\"",
	}
	for name, src := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "sub.go"), []byte("package sub\nimport \"forbidden/pkg\"\n"), 0o600); err != nil {
		t.Fatalf("write sub: %v", err)
	}
	AssertNoDirectImports(t, dir, func(p string) bool { return p == "forbidden/pkg" }, "ignored files")
}

func TestDirectImportViolationsReportsOffenders(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.go"), []byte("package tmp\nimport _ \"zookeeper/internal/core\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("directImportViolations: %v", err)
	}
	if len(viols) != 1 {
		t.Fatalf("expected one violation, got %v", viols)
	}
	rec := &recordingFatal{}
	failIfViolations(rec, "direct imports", "layering", viols)
	if rec.msg == "" {
		t.Fatalf("expected failure to be reported")
	}
}

func TestTransitiveDependencyViolationsUsesGoList(t *testing.T) {
	prev := goListDeps
	t.Cleanup(func() { goListDeps = prev })
	goListDeps = func(string) ([]byte, error) {
		return []byte("fmt\ngo.etcd.io/bbolt\n\nzookeeper/pkg/domain\n"), nil
	}
	viols, _, err := transitiveDependencyViolations(".", BackendDependencyForbidden)
	if err != nil {
		t.Fatalf("transitiveDependencyViolations: %v", err)
	}
	if len(viols) != 1 || viols[0] != "go.etcd.io/bbolt" {
		t.Fatalf("unexpected violations %v", viols)
	}

	goListDeps = func(string) ([]byte, error) { return []byte("boom"), errors.New("exit 1") }
	if _, out, err := transitiveDependencyViolations(".", BackendDependencyForbidden); err == nil || string(out) != "boom" {
		t.Fatalf("expected go list failure to surface, got %v %q", err, out)
	}
}
