// cmd/userpanel/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"rgarchitects/internal/config"
	"rgarchitects/internal/user/client"
	"rgarchitects/internal/user/panel"
)

const help = `commands:
  list | reload      reload the table
  add                open the Add User form
  edit <id>          open the Edit User form
  delete <id>        delete a user (asks for confirmation)
  dismiss            hide the error banner
  help               show this help
  quit               exit`

func main() {
	cfg := config.Load()
	apiURL := flag.String("api", cfg.APIBaseURL, "users API base URL")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := bufio.NewScanner(os.Stdin)
	s := &session{
		in:  in,
		out: os.Stdout,
	}
	s.panel = panel.New(client.New(*apiURL, nil), panel.ConfirmFunc(s.confirm))

	if err := s.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type session struct {
	in    *bufio.Scanner
	out   io.Writer
	panel *panel.Panel
}

func (s *session) run(ctx context.Context) error {
	_ = s.panel.Load(ctx)
	s.render()
	fmt.Fprintln(s.out, help)

	for {
		line, ok := s.prompt("> ")
		if !ok {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch cmd := fields[0]; cmd {
		case "list", "reload":
			err = s.panel.Load(ctx)
		case "add":
			if err = s.panel.Add(); err == nil {
				err = s.editForm(ctx)
			}
		case "edit":
			var id int64
			if id, err = parseID(fields); err == nil {
				if err = s.panel.Edit(id); err == nil {
					err = s.editForm(ctx)
				}
			}
		case "delete":
			var id int64
			if id, err = parseID(fields); err == nil {
				err = s.panel.Delete(ctx, id)
			}
		case "dismiss":
			s.panel.DismissError()
		case "help":
			fmt.Fprintln(s.out, help)
			continue
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(s.out, "unknown command %q, type help\n", cmd)
			continue
		}

		// ошибки API уже показаны баннером или в форме
		if err != nil && (errors.Is(err, panel.ErrInvalidState) || errors.Is(err, panel.ErrUnknownUser) || errors.Is(err, panel.ErrBusy) || errors.Is(err, errBadID)) {
			fmt.Fprintln(s.out, err)
		}
		s.render()
	}
}

// editForm asks for each field and submits until the save succeeds or the
// user cancels.
func (s *session) editForm(ctx context.Context) error {
	for {
		s.render()
		form := s.panel.View().Form
		if form == nil {
			return nil
		}

		first, ok := s.field("First Name", form.FirstName)
		if !ok {
			return s.panel.Cancel()
		}
		last, ok := s.field("Last Name", form.LastName)
		if !ok {
			return s.panel.Cancel()
		}
		email, ok := s.field("Email", form.Email)
		if !ok {
			return s.panel.Cancel()
		}
		manager := s.confirmDefault("Is Manager?", form.IsManager)

		if err := s.panel.UpdateForm(func(f *panel.Form) {
			f.FirstName = first
			f.LastName = last
			f.Email = email
			f.IsManager = manager
		}); err != nil {
			return err
		}

		if !s.confirmDefault("Save?", true) {
			return s.panel.Cancel()
		}
		fmt.Fprintln(s.out, "Saving...")
		if err := s.panel.Submit(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// field показывает текущее значение; пустой ввод его оставляет, "." отменяет форму.
func (s *session) field(label, current string) (string, bool) {
	line, ok := s.prompt(fmt.Sprintf("%s [%s]: ", label, current))
	if !ok || line == "." {
		return "", false
	}
	if line == "" {
		return current, true
	}
	return line, true
}

func (s *session) confirm(prompt string) bool {
	return s.confirmDefault(prompt, false)
}

func (s *session) confirmDefault(prompt string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	line, ok := s.prompt(fmt.Sprintf("%s [%s] ", prompt, hint))
	if !ok {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

func (s *session) prompt(p string) (string, bool) {
	fmt.Fprint(s.out, p)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *session) render() {
	fmt.Fprintln(s.out)
	_ = panel.Render(s.out, s.panel.View())
}

var errBadID = errors.New("usage: <command> <id>")

func parseID(fields []string) (int64, error) {
	if len(fields) != 2 {
		return 0, errBadID
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer id", errBadID, fields[1])
	}
	return id, nil
}
