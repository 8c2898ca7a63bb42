package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toyz/defn/internal/utils"
)

const shapesSource = "decorator traced = `::trace::traced` as preserve;\n" +
	"namespace geo {\n" +
	"  define_function(scale, `[](double f) { return f * 2; }`) {\n" +
	"    auto operator()(double f) const noexcept -> double;\n" +
	"  }\n" +
	"  @traced\n" +
	"  auto area(const Shape& s) -> double { `return s.w * s.h;` }\n" +
	"}\n"

const ambiguousSource = "define_function(amb, `impl`) {\n" +
	"  auto operator()(int& a) const -> void;\n" +
	"  auto operator()(const int& a) const -> void;\n" +
	"}\n"

const mixedSource = "define_function(mixed, `impl`) {\n" +
	"  auto operator()(int a) const -> void;\n" +
	"  template <class T> auto operator()(T a) const -> void;\n" +
	"}\n"

// writeFiles creates files under root, keyed by slash-separated relative path
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// chdir switches into dir for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}

type testOutput struct {
	out    bytes.Buffer
	errOut bytes.Buffer
	report bytes.Buffer
}

// newTestGenerator builds a generator whose output is captured in buffers
func newTestGenerator(t *testing.T, cfg Config, jobs int) (*Generator, *testOutput) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	output := &testOutput{}
	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	diagnostics.SetOutput(&output.out, &output.errOut)
	reporter := NewDiagnosticReporter(&output.report, false, false)

	g, err := NewGenerator(cfg, jobs, diagnostics, reporter)
	require.NoError(t, err)
	return g, output
}
