package ssh

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	bts "github.com/charmbracelet/wish/bubbletea"

	"github.com/pfassina/rendercards/internal/tui"
)

// NewHandler returns a Bubble Tea handler that gives every SSH session its
// own form.
func NewHandler(opts tui.Options) bts.Handler {
	return func(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
		m := tui.New(sessionOptions(opts, sess))

		programOpts := []tea.ProgramOption{tea.WithAltScreen()}
		programOpts = append(programOpts, bts.MakeOptions(sess)...)
		return m, programOpts
	}
}

// sessionOptions scopes opts to one connection. Saved choices are kept per
// user, and runs stop when the connection closes.
func sessionOptions(opts tui.Options, sess ssh.Session) tui.Options {
	sessOpts := opts
	sessOpts.Context = sess.Context()
	if opts.Store != nil {
		sessOpts.Store = opts.Store.ForUser(sess.User())
	}
	if opts.Logger != nil {
		sessOpts.Logger = opts.Logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())
	}
	return sessOpts
}
