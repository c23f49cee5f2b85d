package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cruciblehq/cruxpkg/internal/process"
)

func TestPrinterSplitsStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p := newPrinter(&stdout, &stderr)

	p.print(process.Event{Kind: process.Stdout, Line: "compiling"})
	p.print(process.Event{Kind: process.Stderr, Line: "warning: unused"})
	p.print(process.Event{Kind: process.Stdout, Line: ""})
	p.print(process.Event{Kind: process.Terminal})

	if stdout.String() != "compiling\n\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if stderr.String() != "warning: unused\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
	if err := p.result(); err != nil {
		t.Errorf("result() = %v, want nil", err)
	}
}

func TestPrinterResult(t *testing.T) {
	tests := []struct {
		name    string
		events  []process.Event
		wantErr bool
	}{
		{"success", []process.Event{{Kind: process.Terminal}}, false},
		{"failure", []process.Event{{Kind: process.Terminal, Status: process.ExitStatus{Code: 2}}}, true},
		{"signal", []process.Event{{Kind: process.Terminal, Status: process.ExitStatus{Code: -1, Signal: "killed"}}}, true},
		{"no terminal", []process.Event{{Kind: process.Stdout, Line: "x"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			p := newPrinter(&buf, &buf)
			for _, ev := range tt.events {
				p.print(ev)
			}

			err := p.result()
			if (err != nil) != tt.wantErr {
				t.Fatalf("result() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrBuildFailed) {
				t.Fatalf("result() = %v, want ErrBuildFailed", err)
			}
		})
	}
}
