package cli

import (
	"context"
	"errors"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	rerrors "github.com/matzehuels/robdd/pkg/errors"
	"github.com/matzehuels/robdd/pkg/experiment"
)

func TestParseFormats(t *testing.T) {
	def := []string{"svg"}
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"dot", []string{"dot"}},
		{"dot,json", []string{"dot", "json"}},
		{" dot , png ,", []string{"dot", "png"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in, def); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, def, want string
	}{
		{"", "robdd-8", "robdd-8"},
		{"out", "robdd-8", "out"},
		{"out.svg", "robdd-8", "out"},
		{"dir/out.json", "robdd-8", "dir/out"},
		{"out.txt", "robdd-8", "out.txt"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.def); got != tt.want {
			t.Errorf("basePath(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	t.Run("single format explicit output", func(t *testing.T) {
		paths, err := outputPaths([]string{"svg"}, "diagram.svg", "def")
		if err != nil {
			t.Fatal(err)
		}
		if paths["svg"] != "diagram.svg" {
			t.Errorf("svg path = %q", paths["svg"])
		}
	})

	t.Run("multiple formats share base", func(t *testing.T) {
		paths, err := outputPaths([]string{"dot", "json"}, "out.svg", "def")
		if err != nil {
			t.Fatal(err)
		}
		want := map[string]string{"dot": "out.dot", "json": "out.json"}
		if !reflect.DeepEqual(paths, want) {
			t.Errorf("paths = %v, want %v", paths, want)
		}
	})

	t.Run("default base", func(t *testing.T) {
		paths, err := outputPaths([]string{"svg"}, "", "robdd-8")
		if err != nil {
			t.Fatal(err)
		}
		if paths["svg"] != "robdd-8.svg" {
			t.Errorf("svg path = %q", paths["svg"])
		}
	})

	t.Run("stdout needs one format", func(t *testing.T) {
		_, err := outputPaths([]string{"dot", "svg"}, stdoutPath, "def")
		if !rerrors.Is(err, rerrors.ErrCodeInvalidInput) {
			t.Errorf("err = %v, want INVALID_INPUT", err)
		}
	})
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{
		"dot":  []byte("digraph {}"),
		"json": []byte(`{"vars":0}`),
	}

	written, err := writeArtifacts(artifacts, []string{"dot", "json"}, filepath.Join(dir, "d"), "unused")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "d.dot"), filepath.Join(dir, "d.json")}
	if !reflect.DeepEqual(written, want) {
		t.Fatalf("written = %v, want %v", written, want)
	}
	data, err := os.ReadFile(want[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "digraph {}" {
		t.Errorf("dot content = %q", data)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing default file", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		cfg, err := loadConfig("")
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(cfg, &Config{}) {
			t.Errorf("cfg = %+v, want zero", cfg)
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !rerrors.Is(err, rerrors.ErrCodeInvalidConfig) {
			t.Errorf("err = %v, want INVALID_CONFIG", err)
		}
	})

	t.Run("full file", func(t *testing.T) {
		path := writeConfig(t, `
[cache]
dir = "/tmp/robdd"
ttl = "90m"

[render]
formats = ["dot", "json"]

[experiment]
samples = 500
seed = 42

[server]
addr = ":9090"
`)
		cfg, err := loadConfig(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Cache.Dir != "/tmp/robdd" || cfg.Cache.TTL.Duration != 90*time.Minute {
			t.Errorf("cache = %+v", cfg.Cache)
		}
		if !reflect.DeepEqual(cfg.Render.Formats, []string{"dot", "json"}) {
			t.Errorf("formats = %v", cfg.Render.Formats)
		}
		if cfg.Experiment.Samples != 500 || cfg.Experiment.Seed != 42 {
			t.Errorf("experiment = %+v", cfg.Experiment)
		}
		if cfg.Server.Addr != ":9090" {
			t.Errorf("addr = %q", cfg.Server.Addr)
		}
	})

	t.Run("default location", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", home)
		if err := os.MkdirAll(filepath.Join(home, appName), 0o755); err != nil {
			t.Fatal(err)
		}
		data := []byte("[server]\naddr = \":7000\"\n")
		if err := os.WriteFile(filepath.Join(home, appName, "config.toml"), data, 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := loadConfig("")
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.Addr != ":7000" {
			t.Errorf("addr = %q", cfg.Server.Addr)
		}
	})

	invalid := []struct {
		name, content string
	}{
		{"unknown key", "[cache]\ncolor = \"red\"\n"},
		{"bad duration", "[cache]\nttl = \"soon\"\n"},
		{"bad format", "[render]\nformats = [\"gif\"]\n"},
		{"negative samples", "[experiment]\nsamples = -1\n"},
		{"syntax", "[cache\n"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content))
			if !rerrors.Is(err, rerrors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExperimentOptsWithConfig(t *testing.T) {
	cfg := ExperimentConfig{Samples: 100, Seed: 9, Workers: 2, Records: "runs.txt", MongoURI: "mongodb://db"}

	got := experimentOpts{vars: 5, samples: 7}.withConfig(cfg)
	if got.samples != 7 {
		t.Errorf("flag samples overridden: %d", got.samples)
	}
	if got.seed != 9 || got.workers != 2 || got.records != "runs.txt" || got.mongoURI != "mongodb://db" {
		t.Errorf("config not applied: %+v", got)
	}
}

func TestDiagramsFor(t *testing.T) {
	tests := []struct {
		vars, samples, want int
	}{
		{0, 0, 2},
		{2, 99, 16},
		{4, 0, 65536},
		{5, 0, experiment.DefaultSamples},
		{6, 300, 300},
	}
	for _, tt := range tests {
		if got := diagramsFor(tt.vars, tt.samples); got != tt.want {
			t.Errorf("diagramsFor(%d, %d) = %d, want %d", tt.vars, tt.samples, got, tt.want)
		}
	}
}

func TestOpenSinks(t *testing.T) {
	c := New(io.Discard, LogInfo)

	sink, err := c.openSinks(context.Background(), experimentOpts{})
	if err != nil || sink != nil {
		t.Fatalf("no sinks: got %v, %v", sink, err)
	}

	path := filepath.Join(t.TempDir(), "runs.txt")
	sink, err = c.openSinks(context.Background(), experimentOpts{records: path})
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Write(context.Background(), experiment.Record{Vars: 3, Diagrams: 256, UniqueSizes: 6}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "3;256;6;") {
		t.Errorf("record line = %q", data)
	}

	_, err = c.openSinks(context.Background(), experimentOpts{mongo: true})
	if !rerrors.Is(err, rerrors.ErrCodeInvalidInput) {
		t.Errorf("mongo without uri: err = %v", err)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		value, peak, width int
		full               int
	}{
		{10, 10, 10, 10},
		{5, 10, 10, 5},
		{1, 1000, 10, 1},
		{0, 10, 10, 0},
	}
	for _, tt := range tests {
		got := bar(tt.value, tt.peak, tt.width)
		if n := strings.Count(got, "█"); n != tt.full {
			t.Errorf("bar(%d, %d, %d) has %d full cells, want %d", tt.value, tt.peak, tt.width, n, tt.full)
		}
		if n := strings.Count(got, "░"); n != tt.width-tt.full {
			t.Errorf("bar(%d, %d, %d) has %d empty cells, want %d", tt.value, tt.peak, tt.width, n, tt.width-tt.full)
		}
	}
	if bar(1, 0, 10) != "" {
		t.Error("bar with zero peak should be empty")
	}
}

func TestHistogramTable(t *testing.T) {
	out := histogramTable([]experiment.Bucket{
		{Size: 1, Occurrences: 2, Count: big.NewInt(2)},
		{Size: 3, Occurrences: 4, Count: big.NewInt(4)},
		{Size: 4, Occurrences: 10, Count: big.NewInt(10)},
	})
	for _, want := range []string{"Nodes", "Built", "Functions", "10"} {
		if !strings.Contains(out, want) {
			t.Errorf("histogram table missing %q:\n%s", want, out)
		}
	}
}

func TestProgressModel(t *testing.T) {
	canceled := false
	m := NewProgressModel("Building", 100, func() { canceled = true })

	next, _ := m.Update(progressMsg{done: 25, total: 100})
	m = next.(ProgressModel)
	if m.Done != 25 {
		t.Errorf("Done = %d, want 25", m.Done)
	}
	if view := m.View(); !strings.Contains(view, "25/100") || !strings.Contains(view, "Building") {
		t.Errorf("view = %q", view)
	}

	next, _ = m.Update(tickMsg{})
	if next.(ProgressModel).Frame != 1 {
		t.Error("tick should advance the spinner")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !canceled {
		t.Error("ctrl+c should cancel the work")
	}
	m = next.(ProgressModel)

	boom := errors.New("boom")
	next, cmd := m.Update(finishedMsg{err: boom})
	m = next.(ProgressModel)
	if !m.Finished || m.Err != boom {
		t.Errorf("finished model = %+v", m)
	}
	if cmd == nil {
		t.Error("finishing should quit the program")
	}
	if m.View() != "" {
		t.Error("finished model should render nothing")
	}
}

func TestRootCommand(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"build", "cache", "combine", "completion", "experiment", "render", "serve"}
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			if g == name {
				found = true
			}
		}
		if !found {
			t.Errorf("missing subcommand %q in %v", name, got)
		}
	}

	for _, name := range []string{"config", "no-cache"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag --%s", name)
		}
	}
}

func TestBuildCommandWritesArtifacts(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	c := New(io.Discard, log.ErrorLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"build", "8", "-w", "4", "-f", "dot,json", "--no-cache", "-o", filepath.Join(dir, "and")})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"and.dot", "and.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestBuildCommandRejectsBadWidth(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	c := New(io.Discard, log.ErrorLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"build", "8", "-w", "3", "--no-cache"})

	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("width 3 should be rejected")
	}
}

func TestCombineCommandWritesArtifact(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	out := filepath.Join(t.TempDir(), "combined.dot")
	c := New(io.Discard, log.ErrorLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"combine", "0b0101", "0b0011", "-w", "4", "--op", "and", "-f", "dot", "--no-cache", "-o", out})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "digraph") {
		t.Errorf("not a DOT file: %q", data)
	}
}

func TestRenderCommandFromJSON(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "parity.json")

	build := New(io.Discard, log.ErrorLevel).RootCommand()
	build.SetOut(io.Discard)
	build.SetArgs([]string{"build", "0x6996", "-w", "16", "-f", "json", "--no-cache", "-o", jsonPath})
	if err := build.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	render := New(io.Discard, log.ErrorLevel).RootCommand()
	render.SetOut(io.Discard)
	render.SetArgs([]string{"render", jsonPath, "-f", "dot", "--no-cache"})
	if err := render.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "parity.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "digraph") {
		t.Errorf("not a DOT file: %q", data)
	}
}
