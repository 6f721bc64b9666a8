package collector

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/exporter/wireguard"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/shared/errors"
	"github.com/MindFlavor/prometheus-wireguard-exporter/internal/shared/logger"
)

// allInterfaces asks wg for every interface in one dump; the output then
// already carries the interface name in column 0.
const allInterfaces = "all"

// runner abstracts process execution so tests can substitute canned output.
type runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// CommandCollector builds the model by running `wg show <iface> dump` once
// per configured interface (or once for all of them).
type CommandCollector struct {
	interfaces  []string
	prependSudo bool
	log         *logger.Logger
	run         runner
}

// NewCommandCollector creates a collector for the given interfaces. An empty
// interface list means one `wg show all dump` invocation.
func NewCommandCollector(interfaces []string, prependSudo bool, log *logger.Logger) *CommandCollector {
	return &CommandCollector{
		interfaces:  interfaces,
		prependSudo: prependSudo,
		log:         log,
		run:         execRun,
	}
}

// Collect runs the status command per interface and folds the per-call
// models into one. Each dump is merged exactly once.
func (c *CommandCollector) Collect(ctx context.Context) (*wireguard.Model, error) {
	interfaces := c.interfaces
	if len(interfaces) == 0 {
		interfaces = []string{allInterfaces}
	}

	var acc *wireguard.Model
	for _, iface := range interfaces {
		text, err := c.dump(ctx, iface)
		if err != nil {
			return nil, err
		}

		model, err := wireguard.ParseDump(text)
		if err != nil {
			return nil, err
		}

		if acc == nil {
			acc = model
		} else {
			acc.Merge(model)
		}
	}

	return acc, nil
}

func (c *CommandCollector) dump(ctx context.Context, iface string) (string, error) {
	name := "wg"
	args := []string{"show", iface, "dump"}
	if c.prependSudo {
		name = "sudo"
		args = append([]string{"wg"}, args...)
	}
	cmdline := name + " " + strings.Join(args, " ")

	stdout, stderr, err := c.run(ctx, name, args...)
	if err != nil {
		return "", errors.NewCommandError(cmdline, string(stderr), err)
	}
	if len(stderr) > 0 {
		c.log.WithInterface(iface).Debug("status command wrote to stderr",
			slog.String("command", cmdline),
			slog.String("stderr", string(stderr)))
	}
	if !utf8.Valid(stdout) {
		return "", errors.NewEncodingError(cmdline)
	}

	text := string(stdout)

	// wg omits the interface column when asked for a specific interface.
	// Inject it here so the parser always sees it in column 0; this must
	// happen before the parser runs.
	if iface != allInterfaces {
		text = injectInterface(iface, text)
	}

	return text, nil
}

// injectInterface prepends the interface name as a synthetic leading column
// on every record.
func injectInterface(iface, text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		b.WriteString(iface)
		b.WriteByte('\t')
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
