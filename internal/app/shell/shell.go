// Package shell is the line-oriented front end of the Dojo client. It
// reads one command per line, drives the root controller, and prints the
// active view after every command.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dalemusser/dojo/internal/app/bootstrap"
	"github.com/dalemusser/dojo/internal/app/features/dashboard"
	"github.com/dalemusser/dojo/internal/app/features/groups"
	"github.com/dalemusser/dojo/internal/app/features/login"
	"github.com/dalemusser/dojo/internal/app/features/profile"
	"github.com/dalemusser/dojo/internal/app/features/register"
	"github.com/dalemusser/dojo/internal/app/system/formpipe"
	"github.com/dalemusser/dojo/internal/app/system/navigation"
	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"
)

// errQuit stops the loop.
var errQuit = errors.New("quit")

// Shell runs commands against an App. Commands that call the API run in
// the background, so the input loop keeps reading while they are
// outstanding; the view is printed again whenever one of them finishes.
type Shell struct {
	App *bootstrap.App
	Out io.Writer
	Log *zap.Logger

	outMu sync.Mutex
	cmds  sync.WaitGroup
}

// New returns a Shell and registers it to redraw when background loads
// resolve.
func New(app *bootstrap.App, out io.Writer, logger *zap.Logger) *Shell {
	s := &Shell{App: app, Out: out, Log: logger}
	app.SetChanged(s.render)
	return s
}

// Run restores the session and processes commands from in. It returns on
// "quit", when ctx is done, or at EOF once outstanding commands have
// finished. Quitting cancels whatever is still in flight.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.Wait()
	}()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	// Restore decides which commands the session allows, so it finishes
	// before the first line is read. The first view loads in the background.
	s.App.Start(ctx)
	s.render()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				s.Wait()
				s.printf("\n")
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(line)
			if line == "" {
				s.printf("> ")
				continue
			}
			err := s.Exec(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				s.printf("error: %v\n", err)
			}
			s.render()
		}
	}
}

// Wait blocks until every command started by Exec, and every load those
// commands triggered, has finished.
func (s *Shell) Wait() {
	s.cmds.Wait()
	s.App.Wait()
}

// Exec runs one command line. Argument and view errors are returned at
// once; API calls are started in the background (see Wait).
func (s *Shell) Exec(ctx context.Context, line string) error {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch text.Fold(name) {
	case "help", "?":
		s.printf("%s", helpText)
		return nil
	case "quit", "exit":
		return errQuit
	case "show":
		return nil

	case "login":
		if len(args) != 2 {
			return usage("login <email> <password>")
		}
		in := login.Input{Email: args[0], Password: args[1]}
		s.spawn(func() error { return s.formErr(s.App.Login.Submit(ctx, in)) })
		return nil
	case "register":
		if len(args) != 3 {
			return usage("register <username> <email> <password>")
		}
		in := register.Input{Username: args[0], Email: args[1], Password: args[2]}
		s.spawn(func() error { return s.formErr(s.App.Register.Submit(ctx, in)) })
		return nil
	case "logout":
		s.App.Logout()
		return nil

	case "go":
		if len(args) != 1 {
			return usage("go <dashboard|profile|group:<id>|submit:<id>|login|register>")
		}
		return s.App.NavigateContext(ctx, args[0])
	case "back":
		return s.App.NavigateContext(ctx, string(navigation.Dashboard))

	case "github":
		if err := s.require(navigation.Profile); err != nil {
			return err
		}
		in := profile.Input{GithubUsername: rest}
		s.spawn(func() error { return s.formErr(s.App.Profile.Submit(ctx, in)) })
		return nil

	case "newgroup":
		if err := s.require(navigation.Dashboard); err != nil {
			return err
		}
		gname, desc, _ := strings.Cut(rest, "|")
		in := dashboard.CreateInput{
			Name:        strings.TrimSpace(gname),
			Description: strings.TrimSpace(desc),
		}
		s.spawn(func() error { return s.formErr(s.App.Dashboard.CreateGroup(ctx, in)) })
		return nil
	case "join":
		if err := s.require(navigation.Dashboard); err != nil {
			return err
		}
		if len(args) != 1 {
			return usage("join <groupId>")
		}
		id := args[0]
		s.spawn(func() error {
			// Failures are already shown as a notification.
			_ = s.App.Dashboard.JoinGroup(ctx, id)
			return nil
		})
		return nil

	case "retry":
		return s.App.Retry(ctx)

	case "challenge":
		if err := s.require(navigation.Group); err != nil {
			return err
		}
		if len(args) < 1 {
			return usage("challenge <Easy|Medium|Hard> <topic...>")
		}
		in := groups.ChallengeInput{
			Topic:      strings.TrimSpace(strings.TrimPrefix(rest, args[0])),
			Difficulty: args[0],
		}
		s.App.Group.OpenChallenge()
		s.spawn(func() error { return s.formErr(s.App.Group.CreateChallenge(ctx, in)) })
		return nil

	case "feedback":
		if err := s.require(navigation.Group); err != nil {
			return err
		}
		if len(args) != 1 {
			return usage("feedback <userId>")
		}
		s.App.OpenFeedback(ctx, args[0])
		return nil
	case "close":
		s.App.Feedback.Close()
		return nil
	}

	return fmt.Errorf("unknown command %q; type help", name)
}

// spawn runs fn off the input loop and prints the view when it returns.
func (s *Shell) spawn(fn func() error) {
	s.cmds.Add(1)
	go func() {
		defer s.cmds.Done()
		if err := fn(); err != nil {
			s.printf("error: %v\n", err)
		}
		s.render()
	}()
}

func (s *Shell) printf(format string, args ...any) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.Out, format, args...)
}

// require fails unless the active view is v.
func (s *Shell) require(v navigation.View) error {
	if cur := s.App.Nav.State().View; cur != v {
		return fmt.Errorf("not available on the %s view", cur)
	}
	return nil
}

func usage(u string) error {
	return fmt.Errorf("usage: %s", u)
}

// formErr swallows submit errors; the form's error slots and the
// notifications already show them.
func (s *Shell) formErr(err error) error {
	if err != nil && !errors.Is(err, formpipe.ErrInvalid) {
		s.Log.Debug("submit failed", zap.Error(err))
	}
	return nil
}

const helpText = `commands:
  login <email> <password>
  register <username> <email> <password>
  go <dashboard|profile|group:<id>|submit:<id>|login|register>
  back                         go to the dashboard
  logout
  github <username>            update your profile (profile view)
  newgroup <name> | <desc>     create a group (dashboard)
  join <groupId>               join a group (dashboard)
  retry                        re-run a failed load
  challenge <difficulty> <topic...>   create a challenge (group view)
  feedback <userId>            show a member's feedback (group view)
  close                        close the feedback modal
  show                         print the current view
  help
  quit
`
