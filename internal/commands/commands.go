package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
)

// ErrUnknownCommand is returned by Execute for a name that was never registered.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a subcommand with its own flags and a Run function.
// Flags are defined on FlagSet; Run is called after Parse and can read flag state.
type Command struct {
	Name    string
	Summary string
	FlagSet *flag.FlagSet
	Run     func() error
}

// Registry holds subcommands by name. Add commands with Register; run with Execute.
type Registry struct {
	program string
	cmds    map[string]*Command
}

// NewRegistry returns an empty command registry. program names the binary in usage output.
func NewRegistry(program string) *Registry {
	return &Registry{program: program, cmds: make(map[string]*Command)}
}

// Register adds a subcommand and returns its FlagSet for flag definitions. run is called after
// the FlagSet has parsed the remaining arguments. Registering a name twice replaces it.
func (r *Registry) Register(name, summary string, run func(fs *flag.FlagSet) error) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	r.cmds[name] = &Command{
		Name:    name,
		Summary: summary,
		FlagSet: fs,
		Run:     func() error { return run(fs) },
	}
	return fs
}

// Names lists the registered commands in alphabetical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Usage writes the command list to w.
func (r *Registry) Usage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s <command> [flags]\n\ncommands:\n", r.program)
	for _, name := range r.Names() {
		fmt.Fprintf(w, "  %-10s %s\n", name, r.cmds[name].Summary)
	}
}

// SetOutput sends flag errors and per-command help of every registered command to w.
func (r *Registry) SetOutput(w io.Writer) {
	for _, cmd := range r.cmds {
		cmd.FlagSet.SetOutput(w)
	}
}

// Execute runs the subcommand in args[0] with args[1:] as flag/positional arguments.
// Returns an error for unknown command, parse error, or from Run(). "-h" yields flag.ErrHelp.
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing subcommand")
	}
	name := args[0]
	cmd, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		return err
	}
	return cmd.Run()
}
