package setup

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rileyhilliard/georep/internal/capacity"
	"github.com/rileyhilliard/georep/internal/compat"
	"github.com/rileyhilliard/georep/internal/endpoint"
	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/exec"
	"github.com/rileyhilliard/georep/internal/gluster"
	"github.com/rileyhilliard/georep/internal/lock"
	"github.com/rileyhilliard/georep/internal/logger"
	"github.com/rileyhilliard/georep/internal/ui"
	"github.com/rileyhilliard/georep/pkg/sshutil"
)

// Options is one invocation's input.
type Options struct {
	PrimaryVolume string
	// Secondary is the raw [user@]host::volume argument.
	Secondary string
	// AdminUser logs in over SSH. Defaults to root.
	AdminUser string
	Force     bool
	DryRun    bool

	SSHPort        int
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
	HostKeyPolicy  sshutil.HostKeyPolicy
	KnownHostsFile string

	// GlusterdWorkdir overrides the primary's working directory lookup.
	GlusterdWorkdir string
	CapacityBuffer  int64
}

// VolumeInspector measures a volume. capacity.Inspector satisfies it.
type VolumeInspector interface {
	Inspect(ctx context.Context, host, volume string) (*capacity.Snapshot, error)
}

// Deps are the pipeline's collaborators. Tests replace them with fakes.
type Deps struct {
	Out       *ui.Printer
	Log       logger.Logger
	Local     exec.Runner
	Inspector VolumeInspector
	Locker    lock.Locker

	Geteuid  func() int
	Password func(ui.PasswordPrompt) (string, error)
	Probe    func(ctx context.Context, host string, port int, timeout time.Duration) (time.Duration, error)
	Dial     func(ctx context.Context, opts sshutil.DialOptions) (sshutil.SSHClient, error)
}

// Pipeline runs one setup from privilege check to session creation.
type Pipeline struct {
	opts  Options
	deps  Deps
	RunID string

	secondary endpoint.Endpoint
}

// New creates a pipeline with a fresh run ID.
func New(opts Options, deps Deps) *Pipeline {
	if opts.AdminUser == "" {
		opts.AdminUser = endpoint.DefaultUser
	}
	if opts.SSHPort == 0 {
		opts.SSHPort = 22
	}
	if deps.Log == nil {
		deps.Log = logger.Default()
	}
	return &Pipeline{opts: opts, deps: deps, RunID: uuid.NewString()}
}

// Run executes every stage in order and returns the first failure.
func (p *Pipeline) Run(ctx context.Context) error {
	if euid := p.deps.Geteuid(); euid != 0 {
		return errors.New(errors.ErrPrivilege, "Only root can run this tool!",
			"Re-run as root or with sudo.")
	}

	sec, err := endpoint.ParseSecondary(p.opts.Secondary)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrParse, "Invalid secondary volume",
			"Give the secondary as [user@]host::volume, for example geoaccount@sechost::gvol")
	}
	p.secondary = sec
	p.deps.Log.Debug("run %s: %s -> %s", p.RunID, p.opts.PrimaryVolume, sec)

	pair := p.opts.PrimaryVolume + " " + sec.Host + "::" + sec.Volume
	held, err := p.deps.Locker.Acquire(pair, lock.NewLockInfo(p.RunID, pair))
	if err != nil {
		return err
	}
	defer func() {
		if rerr := held.Release(); rerr != nil {
			p.deps.Log.Warn("releasing lock: %v", rerr)
		}
	}()

	password, err := p.deps.Password(ui.NewPasswordPrompt(p.opts.PrimaryVolume, sec.String(), p.opts.AdminUser, sec.Host))
	if err != nil {
		return err
	}

	client, err := p.connect(ctx, password)
	if err != nil {
		return err
	}
	defer client.Close()

	remote := exec.NewRemote(client, p.opts.AdminUser != endpoint.DefaultUser, p.opts.CommandTimeout, p.deps.Log)

	if err := p.checkVersions(ctx, remote); err != nil {
		return err
	}
	if err := p.checkCapacity(ctx); err != nil {
		return err
	}

	primaryWorkdir := p.opts.GlusterdWorkdir
	if primaryWorkdir == "" {
		primaryWorkdir = gluster.Workdir(ctx, p.deps.Local, p.deps.Log)
	}
	b := &Bootstrapper{
		Local:            p.deps.Local,
		Remote:           remote,
		Out:              p.deps.Out,
		Log:              p.deps.Log,
		PrimaryWorkdir:   primaryWorkdir,
		SecondaryWorkdir: gluster.Workdir(ctx, remote, p.deps.Log),
		SecondaryHost:    sec.Host,
		AdminUser:        p.opts.AdminUser,
		SessionUser:      sec.User,
		PubFile:          PubFileName(p.opts.PrimaryVolume, sec.Volume),
	}
	session := &SessionCreator{Local: p.deps.Local, Out: p.deps.Out}

	if p.opts.DryRun {
		for _, line := range b.Plan() {
			p.deps.Out.DryRun("%s", line)
		}
		p.deps.Out.DryRun("%s", session.Command(p.opts.PrimaryVolume, sec, p.opts.Force))
		return nil
	}

	if err := b.Run(ctx); err != nil {
		return err
	}
	return session.Create(ctx, p.opts.PrimaryVolume, sec, p.opts.Force)
}

// connect probes the SSH port and then authenticates with password.
func (p *Pipeline) connect(ctx context.Context, password string) (sshutil.SSHClient, error) {
	host, port := p.secondary.Host, p.opts.SSHPort

	latency, err := p.deps.Probe(ctx, host, port, p.opts.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	p.deps.Log.Debug("%s:%d answered in %s", host, port, latency)
	p.deps.Out.OK("%s is Reachable(Port %d)", host, port)

	client, err := p.deps.Dial(ctx, sshutil.DialOptions{
		Host:           host,
		Port:           port,
		User:           p.opts.AdminUser,
		Password:       password,
		Timeout:        p.opts.ConnectTimeout,
		HostKeyPolicy:  p.opts.HostKeyPolicy,
		KnownHostsPath: p.opts.KnownHostsFile,
	})
	if err != nil {
		return nil, err
	}
	p.deps.Out.OK("SSH Connection established %s@%s", p.opts.AdminUser, host)
	return client, nil
}

// checkVersions compares `gluster --version` on both sides.
func (p *Pipeline) checkVersions(ctx context.Context, remote exec.Runner) error {
	pv, err := gluster.Version(ctx, p.deps.Local, "Primary")
	if err != nil {
		return err
	}
	sv, err := gluster.Version(ctx, remote, "Secondary")
	if err != nil {
		return err
	}
	return p.report([]compat.Outcome{compat.Versions(pv, sv)})
}

// checkCapacity mounts both volumes in turn and compares them. An
// inspection error ends the run whatever --force says: nothing is known
// about a volume that could not be mounted and measured.
func (p *Pipeline) checkCapacity(ctx context.Context) error {
	local := endpoint.Primary(p.opts.PrimaryVolume)
	primary, err := p.deps.Inspector.Inspect(ctx, local.Host, local.Volume)
	if err != nil {
		return err
	}

	secondary, err := p.deps.Inspector.Inspect(ctx, p.secondary.Host, p.secondary.Volume)
	if err != nil {
		return err
	}

	outcomes := compat.Capacity(primary, secondary, compat.CapacityOptions{
		Force:  p.opts.Force,
		Buffer: p.opts.CapacityBuffer,
	})
	return p.report(outcomes)
}

// report turns a Fatal outcome into an error carrying that check's code,
// or prints every OK and Warning outcome.
func (p *Pipeline) report(outcomes []compat.Outcome) error {
	if o, fatal := compat.FirstFatal(outcomes); fatal {
		code, hint := errors.ErrCapacity, "Re-run with --force to continue anyway."
		switch o.Check {
		case compat.CheckVersion:
			code, hint = errors.ErrVersion, "Upgrade one cluster so both run the same glusterfs version."
		case compat.CheckEmpty:
			hint = ""
		}
		return errors.New(code, o.Message, hint)
	}

	for _, o := range outcomes {
		if o.Status == compat.Warning {
			p.deps.Out.Warn("%s", o.Message)
			continue
		}
		p.deps.Out.OK("%s", o.Message)
	}
	return nil
}
