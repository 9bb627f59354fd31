// Package ssh serves the interactive form over SSH so decks can be rendered
// on a host that has the rendering tools installed.
package ssh

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bts "github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"github.com/pfassina/rendercards/internal/config"
	"github.com/pfassina/rendercards/internal/tui"
)

// Server wraps a Wish SSH server.
type Server struct {
	server *ssh.Server
	addr   string
}

// HostKeyPath is where the server keeps its host key.
func HostKeyPath() string {
	return filepath.Join(config.ConfigDir(), "ssh_host_key")
}

// New creates a new SSH server listening on addr.
func New(addr string, opts tui.Options) (*Server, error) {
	hostKeyPath := HostKeyPath()
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0755); err != nil {
		return nil, fmt.Errorf("create host key dir: %w", err)
	}

	s, err := wish.NewServer(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			bts.Middleware(NewHandler(opts)),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create ssh server: %w", err)
	}

	return &Server{server: s, addr: addr}, nil
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.addr }

// ListenAndServe starts the SSH server. It returns nil after Close.
func (s *Server) ListenAndServe() error {
	err := s.server.ListenAndServe()
	if errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the SSH server.
func (s *Server) Close() error {
	return s.server.Close()
}
