package alert

import (
	"fmt"
	"os/exec"
)

// Player plays one audio clip to completion, blocking until it ends.
// Implementations are called only from the dispatch worker goroutine.
type Player interface {
	Play(path string) error
}

// ExecPlayer shells out to an external audio tool for each clip. The
// default invocation is ffplay in headless mode; any player that accepts
// a file path as its final argument works.
type ExecPlayer struct {
	command string
	args    []string
}

// NewExecPlayer creates a player running the given command with the clip
// path appended to args. An empty command selects ffplay.
func NewExecPlayer(command string, args ...string) *ExecPlayer {
	if command == "" {
		command = "ffplay"
		args = []string{"-nodisp", "-autoexit", "-loglevel", "error"}
	}
	return &ExecPlayer{command: command, args: args}
}

// Play runs the configured command and blocks until it exits.
func (p *ExecPlayer) Play(path string) error {
	cmd := exec.Command(p.command, append(append([]string{}, p.args...), path)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed for %s: %w (output: %s)", p.command, path, err, out)
	}
	return nil
}

// noopPlayer is a safe default when no player is supplied, mirroring the
// no-op stats fallback elsewhere: dispatch logic runs, audio is silent.
type noopPlayer struct{}

func (noopPlayer) Play(string) error { return nil }
