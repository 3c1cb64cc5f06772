package setup

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/georep/internal/capacity"
	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/exec"
	"github.com/rileyhilliard/georep/internal/gluster"
	locktesting "github.com/rileyhilliard/georep/internal/lock/testing"
	"github.com/rileyhilliard/georep/internal/logger"
	"github.com/rileyhilliard/georep/internal/ui"
	"github.com/rileyhilliard/georep/pkg/sshutil"
	sshtesting "github.com/rileyhilliard/georep/pkg/sshutil/testing"
	"github.com/stretchr/testify/require"
)

// fakeLocal answers local commands by their joined command line.
type fakeLocal struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]exec.Result
	errs      map[string]error
	hooks     map[string]func()
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{
		responses: map[string]exec.Result{},
		errs:      map[string]error{},
		hooks:     map[string]func(){},
	}
}

func (f *fakeLocal) Run(ctx context.Context, name string, args ...string) (exec.Result, error) {
	line := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.calls = append(f.calls, line)
	res, ok := f.responses[line]
	err := f.errs[line]
	hook := f.hooks[line]
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		res = exec.Result{}
	}
	res.Host = "localhost"
	res.Command = line
	if err != nil && res.ExitCode == 0 {
		res.ExitCode = -1
	}
	return res, err
}

func (f *fakeLocal) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeLocal) ran(line string) bool {
	for _, c := range f.Calls() {
		if c == line {
			return true
		}
	}
	return false
}

// fakeInspector returns canned snapshots keyed by host::volume. It keeps
// the real inspector's mount accounting: a TRANSPORT error from errs is a
// failed mount and holds nothing, any other outcome mounts the volume and
// releases it before returning.
type fakeInspector struct {
	snaps map[string]*capacity.Snapshot
	errs  map[string]error
	calls []string

	mounts   int
	releases int
	// held counts mounts not yet released at the time of each mount.
	held []int

	onInspect func(key string) error
}

func (f *fakeInspector) Inspect(ctx context.Context, host, volume string) (*capacity.Snapshot, error) {
	key := host + "::" + volume
	f.calls = append(f.calls, key)
	if f.onInspect != nil {
		if err := f.onInspect(key); err != nil {
			return nil, err
		}
	}
	err := f.errs[key]
	if errors.IsCode(err, errors.ErrTransport) {
		return nil, err
	}

	f.held = append(f.held, f.mounts-f.releases)
	f.mounts++
	defer func() { f.releases++ }()

	if err != nil {
		return nil, err
	}
	return f.snaps[key], nil
}

// allReleased reports whether every mount taken was released and no two
// mounts were ever held together.
func (f *fakeInspector) allReleased() bool {
	for _, h := range f.held {
		if h != 0 {
			return false
		}
	}
	return f.mounts == f.releases
}

const (
	gib = int64(1) << 30

	createLine = "gluster volume geo-replication primary1 geo@secHost::secondary1 create no-verify"
	pubFile    = "primary1_secondary1_common_secret.pem.pub"
)

// fixture wires a pipeline for primary1 -> geo@secHost::secondary1 where
// every stage succeeds.
type fixture struct {
	local   *fakeLocal
	remote  *sshtesting.MockClient
	insp    *fakeInspector
	locks   *locktesting.FakeLockManager
	log     *logger.BufferLogger
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	workdir string

	euid      int
	prompts   []ui.PasswordPrompt
	promptErr error
	probeErr  error
	probed    bool
	dialOpts  []sshutil.DialOptions
	dialErr   error

	opts Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	wd := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(wd, gluster.GeoRepSubdir), 0o755))

	local := newFakeLocal()
	local.responses["gluster --version"] = exec.Result{Stdout: []byte("glusterfs 11.1\nRepository revision: git://git.gluster.org/glusterfs.git\n")}
	local.responses["gluster system:: getwd"] = exec.Result{Stdout: []byte(wd + "\n")}
	local.hooks["gluster system:: execute gsec_create"] = func() {
		_ = os.WriteFile(gluster.CommonSecretPath(wd), []byte("command=\"/usr/libexec/glusterfs/gsyncd\" ssh-rsa AAAA root@primary1\n"), 0o600)
	}

	remote := sshtesting.NewMockClient("secHost")
	sshtesting.WithVersion(remote, "11.1")
	remote.SetCommandResponse(`^(sudo )?gluster system:: getwd$`, sshtesting.CommandResponse{
		Stdout: []byte(gluster.DefaultWorkdir + "\n"),
	})

	insp := &fakeInspector{
		snaps: map[string]*capacity.Snapshot{
			"localhost::primary1": {Host: "localhost", Volume: "primary1", Total: uint64(10 * gib), Used: uint64(2 * gib), Empty: false},
			"secHost::secondary1": {Host: "secHost", Volume: "secondary1", Total: uint64(20 * gib), Used: uint64(gib / 10), Empty: true},
		},
		errs: map[string]error{},
	}

	return &fixture{
		local:   local,
		remote:  remote,
		insp:    insp,
		locks:   locktesting.NewFakeLockManager(),
		log:     logger.NewBufferLogger(),
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
		workdir: wd,
		opts: Options{
			PrimaryVolume:  "primary1",
			Secondary:      "geo@secHost::secondary1",
			ConnectTimeout: time.Second,
		},
	}
}

func (f *fixture) pipeline() *Pipeline {
	return New(f.opts, Deps{
		Out:       ui.NewPrinter(f.out, f.errOut, ui.ColorNever),
		Log:       f.log,
		Local:     f.local,
		Inspector: f.insp,
		Locker:    f.locks,
		Geteuid:   func() int { return f.euid },
		Password: func(p ui.PasswordPrompt) (string, error) {
			f.prompts = append(f.prompts, p)
			if f.promptErr != nil {
				return "", f.promptErr
			}
			return "s3cret", nil
		},
		Probe: func(ctx context.Context, host string, port int, timeout time.Duration) (time.Duration, error) {
			f.probed = true
			return time.Millisecond, f.probeErr
		},
		Dial: func(ctx context.Context, opts sshutil.DialOptions) (sshutil.SSHClient, error) {
			f.dialOpts = append(f.dialOpts, opts)
			if f.dialErr != nil {
				return nil, f.dialErr
			}
			return f.remote, nil
		},
	})
}

func (f *fixture) run() error {
	return f.pipeline().Run(context.Background())
}

// versionResponse is what `gluster --version` prints for v.
func versionResponse(v string) sshtesting.CommandResponse {
	return sshtesting.CommandResponse{Stdout: []byte("glusterfs " + v + "\n")}
}

// remoteRan reports whether a remote command line contains substr.
func (f *fixture) remoteRan(substr string) bool {
	for _, c := range f.remote.Commands() {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}
