// Package sshtest provides in-memory ssh.Session fakes for middleware and
// handler tests.
package sshtest

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync"

	"github.com/charmbracelet/ssh"
)

var localAddr = &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 2222}

// Context is a fake ssh.Context backed by a parent context.Context.
type Context struct {
	context.Context
	mu        sync.Mutex
	values    map[any]any
	user      string
	sessionID string
	remote    net.Addr
}

func (f *Context) Lock()                         { f.mu.Lock() }
func (f *Context) Unlock()                       { f.mu.Unlock() }
func (f *Context) User() string                  { return f.user }
func (f *Context) SessionID() string             { return f.sessionID }
func (f *Context) ClientVersion() string         { return "ssh-test-client" }
func (f *Context) ServerVersion() string         { return "ssh-test-server" }
func (f *Context) RemoteAddr() net.Addr          { return f.remote }
func (f *Context) LocalAddr() net.Addr           { return localAddr }
func (f *Context) Permissions() *ssh.Permissions { return &ssh.Permissions{} }

func (f *Context) SetValue(key, value interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}

func (f *Context) Value(key interface{}) interface{} {
	f.mu.Lock()
	v, ok := f.values[key]
	f.mu.Unlock()
	if ok {
		return v
	}
	return f.Context.Value(key)
}

// Options configures NewSession.
type Options struct {
	User      string
	SessionID string
	Remote    net.Addr
	Environ   []string
	// Input is served to Read. When empty, Read blocks until CloseInput.
	Input string
	PTY   bool
	Term  string
}

// Session is a fake ssh.Session that records writes and exit codes.
type Session struct {
	ctx     *Context
	opts    Options
	reader  io.Reader
	closer  io.Closer
	windows chan ssh.Window

	mu       sync.Mutex
	writes   bytes.Buffer
	chunks   []string
	exitCode *int
}

// NewSession builds a Session whose context derives from parent.
func NewSession(parent context.Context, opts Options) *Session {
	if parent == nil {
		parent = context.Background()
	}
	if opts.User == "" {
		opts.User = "guest"
	}
	if opts.SessionID == "" {
		opts.SessionID = "test-session"
	}
	if opts.Remote == nil {
		opts.Remote = &net.TCPAddr{IP: net.ParseIP("203.0.113.10"), Port: 2022}
	}

	reader := io.Reader(bytes.NewBufferString(opts.Input))
	var closer io.Closer
	if opts.Input == "" {
		r, w := io.Pipe()
		reader = r
		closer = w
	}

	return &Session{
		ctx: &Context{
			Context:   parent,
			values:    map[any]any{},
			user:      opts.User,
			sessionID: opts.SessionID,
			remote:    opts.Remote,
		},
		opts:    opts,
		reader:  reader,
		closer:  closer,
		windows: make(chan ssh.Window, 1),
	}
}

func (f *Session) Read(p []byte) (int, error) { return f.reader.Read(p) }

func (f *Session) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chunks = append(f.chunks, string(p))
	return f.writes.Write(p)
}

func (f *Session) Close() error                                   { return nil }
func (f *Session) CloseWrite() error                              { return nil }
func (f *Session) SendRequest(string, bool, []byte) (bool, error) { return false, nil }
func (f *Session) Stderr() io.ReadWriter                          { return &bytes.Buffer{} }
func (f *Session) User() string                                   { return f.opts.User }
func (f *Session) RemoteAddr() net.Addr                           { return f.opts.Remote }
func (f *Session) LocalAddr() net.Addr                            { return localAddr }
func (f *Session) Environ() []string                              { return f.opts.Environ }
func (f *Session) Command() []string                              { return nil }
func (f *Session) RawCommand() string                             { return "" }
func (f *Session) Subsystem() string                              { return "" }
func (f *Session) PublicKey() ssh.PublicKey                       { return nil }
func (f *Session) Context() ssh.Context                           { return f.ctx }
func (f *Session) Permissions() ssh.Permissions                   { return ssh.Permissions{} }
func (f *Session) EmulatedPty() bool                              { return false }
func (f *Session) Signals(chan<- ssh.Signal)                      {}
func (f *Session) Break(chan<- bool)                              {}

func (f *Session) Exit(code int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exitCode = &code
	return nil
}

func (f *Session) Pty() (ssh.Pty, <-chan ssh.Window, bool) {
	pty := ssh.Pty{Term: f.opts.Term, Window: ssh.Window{Width: 80, Height: 24}}
	return pty, f.windows, f.opts.PTY
}

// Output returns everything written so far.
func (f *Session) Output() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes.String()
}

// Writes returns the individual Write calls.
func (f *Session) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.chunks))
	copy(out, f.chunks)
	return out
}

// CloseInput unblocks a pending Read when the session was built without Input.
func (f *Session) CloseInput() {
	if f.closer != nil {
		_ = f.closer.Close()
	}
}

// ExitCode returns the recorded exit status, if any.
func (f *Session) ExitCode() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exitCode == nil {
		return 0, false
	}
	return *f.exitCode, true
}
