// Package cli is the command line front end of the client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fastygo/peoplesearch/domain"
	"github.com/fastygo/peoplesearch/internal/app"
	"github.com/fastygo/peoplesearch/usecase/session"
)

// offline marks commands that run without a backend.
const offline = "offline"

// Runtime carries the process surroundings of one invocation.
type Runtime struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
	// Open builds the client. It is called once, before the first command that needs it.
	Open func(ctx context.Context) (*app.App, error)
	// ReadPassword reads a secret. It defaults to a no-echo terminal prompt.
	ReadPassword func(prompt string) (string, error)
}

type shell struct {
	rt     Runtime
	app    *app.App
	asJSON bool

	unsubscribe   func()
	loggingOut    bool
	expiryNotices int
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, rt Runtime, args []string) int {
	s := newShell(rt)
	root := s.rootCommand()
	root.SetArgs(args)
	root.SetIn(s.rt.In)
	root.SetOut(s.rt.Out)
	root.SetErr(s.rt.Err)

	err := root.ExecuteContext(ctx)
	if cerr := s.close(); cerr != nil {
		s.logger().Warn("failed to close client", zap.Error(cerr))
	}
	if err != nil {
		s.report(err)
		return 1
	}
	return 0
}

func newShell(rt Runtime) *shell {
	if rt.In == nil {
		rt.In = os.Stdin
	}
	if rt.Out == nil {
		rt.Out = os.Stdout
	}
	if rt.Err == nil {
		rt.Err = os.Stderr
	}
	if rt.ReadPassword == nil {
		rt.ReadPassword = passwordPrompt(rt.In, rt.Err)
	}
	return &shell{rt: rt}
}

func (s *shell) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "peoplesearch",
		Short:         "Search people and manage your account",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[offline] == "true" {
				return nil
			}
			return s.open(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVar(&s.asJSON, "json", false, "print JSON instead of text")

	root.AddCommand(
		s.loginCommand(),
		s.registerCommand(),
		s.logoutCommand(),
		s.whoamiCommand(),
		s.profileCommand(),
		s.plansCommand(),
		s.subscribeCommand(),
		s.searchCommand(),
		s.personCommand(),
		s.historyCommand(),
		s.analyticsCommand(),
	)
	return root
}

// open builds the client and resumes the saved session. A session that cannot
// be verified is reported but does not stop the command.
func (s *shell) open(ctx context.Context) error {
	if s.app != nil {
		return nil
	}
	if s.rt.Open == nil {
		return errors.New("client is not configured")
	}
	a, err := s.rt.Open(ctx)
	if err != nil {
		return err
	}
	s.app = a

	if err := a.Session.Restore(ctx); err != nil {
		fmt.Fprintf(s.rt.Err, "warning: could not verify the saved session: %s\n", domain.MessageOf(err, ""))
	}

	prev := a.Session.Snapshot().State
	s.unsubscribe = a.Session.Subscribe(func(snap session.Snapshot) {
		if snap.Loading {
			return
		}
		if prev == session.StateAuthenticated && snap.State == session.StateUnauthenticated && !s.loggingOut {
			s.expiryNotices++
			fmt.Fprintln(s.rt.Err, "Your session has expired. Please log in again.")
		}
		prev = snap.State
	})
	return nil
}

func (s *shell) close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	return err
}

func (s *shell) logger() *zap.Logger {
	if s.app != nil {
		return s.app.Logger
	}
	return zap.NewNop()
}

// report prints err as a one-line notification followed by field messages.
func (s *shell) report(err error) {
	fmt.Fprintf(s.rt.Err, "error: %s\n", domain.MessageOf(err, ""))
	fields := domain.FieldsOf(err)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, msg := range fields[k] {
			fmt.Fprintf(s.rt.Err, "  %s: %s\n", k, msg)
		}
	}
}

func passwordPrompt(in io.Reader, prompt io.Writer) func(string) (string, error) {
	var reader *bufio.Reader
	return func(label string) (string, error) {
		fmt.Fprint(prompt, label)
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(prompt)
			return string(b), err
		}
		if reader == nil {
			reader = bufio.NewReader(in)
		}
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
