package cmd

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolveVersion(t *testing.T) {
	buildInfo := func(v string) func() (*debug.BuildInfo, bool) {
		return func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Main: debug.Module{Version: v}}, true
		}
	}
	noInfo := func() (*debug.BuildInfo, bool) { return nil, false }

	tests := []struct {
		name string
		set  string
		read func() (*debug.BuildInfo, bool)
		want string
	}{
		{"ldflags wins", "1.2.3", buildInfo("v9.9.9"), "1.2.3"},
		{"module version", "", buildInfo("v1.4.0"), "v1.4.0"},
		{"devel build", "", buildInfo("(devel)"), "dev"},
		{"no build info", "", noInfo, "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveVersion(tt.set, tt.read); got != tt.want {
				t.Errorf("resolveVersion = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintVersion(t *testing.T) {
	prev := Version
	Version = "2.0.1"
	defer func() { Version = prev }()

	var buf bytes.Buffer
	printVersion(&buf, true)
	if buf.String() != "2.0.1\n" {
		t.Errorf("short output = %q", buf.String())
	}

	buf.Reset()
	printVersion(&buf, false)
	for _, want := range []string{"ASYCUDA Converter\n", "Version:    2.0.1\n", "Go Version: go"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}
