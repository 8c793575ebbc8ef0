//go:build !egl && !glfw

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
)

const poolXML = `<mujoco model="pool">
  <option timestep="0.002" gravity="0 0 0"/>
  <worldbody>
    <geom name="table" type="plane" size="1.2 1.2 0.1" rgba="0 0.5 0 1"/>
    <body name="object0" pos="0 0 0.05">
      <joint type="slide" axis="1 0 0"/>
      <joint type="slide" axis="0 1 0"/>
      <geom type="sphere" size="0.05" rgba="1 1 1 1"/>
    </body>
    <body name="object1" pos="0 0 0.05">
      <joint type="slide" axis="1 0 0"/>
      <joint type="slide" axis="0 1 0"/>
      <geom type="sphere" size="0.05" rgba="1 0 0 1"/>
    </body>
  </worldbody>
</mujoco>
`

const frameBytes = 8 * 6 * 3

type workspace struct {
	dir    string
	model  string
	config string
	out    string
}

// newWorkspace writes a model, a key file and a small-render config.
func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	w := &workspace{
		dir:    dir,
		model:  filepath.Join(dir, "pool.xml"),
		config: filepath.Join(dir, "small.yaml"),
		out:    filepath.Join(dir, "out"),
	}
	key := filepath.Join(dir, "mjkey.txt")
	yaml := fmt.Sprintf("key_file: %s\noutput_dir: %s\nseed: 11\nrender:\n  width: 8\n  height: 6\nmanifest:\n  enabled: false\n", key, w.out)

	for path, content := range map[string]string{w.model: poolXML, key: "key", w.config: yaml} {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

func run(args ...string) (int, string) {
	var stdout bytes.Buffer
	code := execute(args, &stdout, io.Discard)
	return code, stdout.String()
}

func outSizes(t *testing.T, dir string) map[string]int64 {
	t.Helper()
	sizes := map[string]int64{}
	matches, _ := filepath.Glob(filepath.Join(dir, "*.out"))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			t.Fatal(err)
		}
		sizes[filepath.Base(m)] = info.Size()
	}
	return sizes
}

func TestRecordCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     func(w *workspace) []string
		wantCode int
		wantOut  string
		// wantFiles maps file names to the expected frame count range.
		wantFiles map[string][2]int64
	}{
		{
			name:     "too few arguments",
			args:     func(w *workspace) []string { return []string{w.model, "1"} },
			wantCode: 0,
			wantOut:  usage + "\n",
		},
		{
			name:     "no arguments",
			args:     func(w *workspace) []string { return nil },
			wantCode: 0,
			wantOut:  usage + "\n",
		},
		{
			name:      "two episodes",
			args:      func(w *workspace) []string { return []string{"--config", w.config, w.model, "0.5", "10", "2"} },
			wantCode:  1,
			wantOut:   "0",
			wantFiles: map[string][2]int64{"0_0.out": {4, 5}, "1_0.out": {4, 5}},
		},
		{
			name:     "negative repetitions record nothing",
			args:     func(w *workspace) []string { return []string{"--config", w.config, w.model, "1.0", "10", "-2"} },
			wantCode: 1,
		},
		{
			name:      "negative duration leaves empty files",
			args:      func(w *workspace) []string { return []string{"--config", w.config, w.model, "-1", "10", "2"} },
			wantCode:  1,
			wantOut:   "0\n1\n",
			wantFiles: map[string][2]int64{"0_0.out": {0, 0}, "1_0.out": {0, 0}},
		},
		{
			name: "malformed values fall back or keep their numeric prefix",
			args: func(w *workspace) []string {
				return []string{"--config", w.config, w.model, "abc", "10x", "1_000"}
			},
			wantCode:  1,
			wantFiles: map[string][2]int64{"0_0.out": {10, 12}},
		},
		{
			name: "missing model is fatal",
			args: func(w *workspace) []string {
				return []string{"--config", w.config, w.dir + "/none.xml", "1", "10", "1"}
			},
			wantCode: 1,
		},
		{
			name:     "unknown preset is fatal",
			args:     func(w *workspace) []string { return []string{"--preset", "bank_shot", w.model, "1", "10", "1"} },
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			w := newWorkspace(t)

			code, out := run(tt.args(w)...)
			g.Expect(code).To(Equal(tt.wantCode))
			g.Expect(out).To(HavePrefix(tt.wantOut))

			sizes := outSizes(t, w.out)
			g.Expect(sizes).To(HaveLen(len(tt.wantFiles)))
			for name, frames := range tt.wantFiles {
				g.Expect(sizes).To(HaveKey(name))
				g.Expect(sizes[name] % frameBytes).To(BeZero())
				g.Expect(sizes[name] / frameBytes).To(BeNumerically(">=", frames[0]))
				g.Expect(sizes[name] / frameBytes).To(BeNumerically("<=", frames[1]))
			}
		})
	}
}

func TestLoadConfigLayering(t *testing.T) {
	g := NewWithT(t)
	w := newWorkspace(t)

	cmd := newRootCmd()
	g.Expect(cmd.ParseFlags([]string{"--preset", "steep", "--config", w.config, "--seed", "3", "--data", w.dir})).To(Succeed())
	cfg, err := loadConfig(cmd)
	g.Expect(err).NotTo(HaveOccurred())

	// preset scenario survives a config file that does not name one
	g.Expect(cfg.Scenario.SlopeRange[0]).To(Equal(0.5))
	// config file over defaults
	g.Expect(cfg.Render.Width).To(Equal(8))
	g.Expect(cfg.OutputDir).To(Equal(w.out))
	g.Expect(cfg.Manifest.Enabled).To(BeFalse())
	// flags over config file
	g.Expect(cfg.Seed).To(Equal(int64(3)))
	g.Expect(cfg.Manifest.DataDir).To(Equal(w.dir))

	cmd = newRootCmd()
	g.Expect(cmd.ParseFlags([]string{"--config", w.config})).To(Succeed())
	cfg, err = loadConfig(cmd)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(cfg.Seed).To(Equal(int64(11)))
	g.Expect(cfg.Scenario.SlopeRange[0]).To(Equal(-0.25))
}

func TestManifestListAndPresets(t *testing.T) {
	g := NewWithT(t)
	w := newWorkspace(t)
	data := filepath.Join(w.dir, "runs")

	// same config with the manifest turned on
	raw, err := os.ReadFile(w.config)
	g.Expect(err).NotTo(HaveOccurred())
	withManifest := strings.Replace(string(raw), "  enabled: false\n", "  enabled: true\n", 1)
	g.Expect(os.WriteFile(w.config, []byte(withManifest), 0644)).To(Succeed())

	code, _ := run("--config", w.config, "--data", data, w.model, "0.3", "10", "1")
	g.Expect(code).To(Equal(1))

	code, out := run("list", "--data", data)
	g.Expect(code).To(Equal(0))
	g.Expect(out).To(ContainSubstring("pool_"))
	g.Expect(out).To(ContainSubstring("8x6"))
	g.Expect(out).To(ContainSubstring("11"))

	code, out = run("list", "--data", filepath.Join(w.dir, "empty"))
	g.Expect(code).To(Equal(0))
	g.Expect(out).To(Equal("no runs found\n"))

	code, out = run("presets")
	g.Expect(code).To(Equal(0))
	for _, name := range []string{"default", "near_miss", "shallow", "steep"} {
		g.Expect(out).To(ContainSubstring(name))
	}
}

func TestInspectCommand(t *testing.T) {
	g := NewWithT(t)
	w := newWorkspace(t)

	code, _ := run("--config", w.config, w.model, "0.5", "10", "1")
	g.Expect(code).To(Equal(1))

	pngs := filepath.Join(w.dir, "png")
	code, out := run("inspect", filepath.Join(w.out, "0_0.out"), "--width", "8", "--height", "6", "--png", pngs)
	g.Expect(code).To(Equal(0))
	g.Expect(out).To(ContainSubstring("label: 0"))
	g.Expect(out).To(ContainSubstring("mean intensity per frame"))

	exported, _ := filepath.Glob(filepath.Join(pngs, "*.png"))
	g.Expect(exported).NotTo(BeEmpty())

	code, _ = run("inspect", filepath.Join(w.out, "missing.out"))
	g.Expect(code).To(Equal(1))
}
