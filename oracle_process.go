package giellamorph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// DefaultLookupCommand is the hfst binary used for .hfstol transducers.
const DefaultLookupCommand = "hfst-optimized-lookup"

// ProcessTransducer drives a long-running hfst lookup process. Each input
// is written as one line; the process answers with one line per reading
// followed by an empty line. Lookups are serialised.
type ProcessTransducer struct {
	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   *bufio.Reader
}

// StartHFST starts command ("" selects DefaultLookupCommand) in quiet mode
// on the transducer file at path.
func StartHFST(command, path string) (*ProcessTransducer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, sourceError("stat transducer", path, err)
	}
	if command == "" {
		command = DefaultLookupCommand
	}
	return StartProcessTransducer(command, "-q", path)
}

// StartProcessTransducer starts an arbitrary lookup command speaking the
// hfst-lookup line protocol.
func StartProcessTransducer(command string, args ...string) (*ProcessTransducer, error) {
	bin, err := exec.LookPath(command)
	if err != nil {
		return nil, sourceError("find lookup command", command, err)
	}
	cmd := exec.Command(bin, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", command, err)
	}
	return &ProcessTransducer{
		cmd:   cmd,
		stdin: stdin,
		out:   bufio.NewReader(stdout),
	}, nil
}

// Lookup implements Transducer.
func (p *ProcessTransducer) Lookup(input string) ([]Reading, error) {
	if input == "" {
		return nil, nil
	}
	if strings.ContainsAny(input, "\r\n") {
		return nil, errors.New("lookup input contains a line break")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := io.WriteString(p.stdin, input+"\n"); err != nil {
		return nil, fmt.Errorf("write lookup input: %w", err)
	}
	var readings []Reading
	for {
		line, err := p.out.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read lookup output: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return readings, nil
		}
		if l, ok := ParseLookupLine(line); ok {
			readings = append(readings, l.Reading)
		}
	}
}

// Close stops the lookup process.
func (p *ProcessTransducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.stdin.Close(); err != nil {
		return err
	}
	return p.cmd.Wait()
}
