package bundler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/appbundle/internal/config"
	"github.com/oshokin/appbundle/internal/domain/bundle"
	"github.com/oshokin/appbundle/internal/logger"
	"github.com/oshokin/appbundle/internal/repository/attachment"
	"github.com/oshokin/appbundle/internal/service/archive"
	"github.com/oshokin/appbundle/internal/service/dependency"
	"github.com/oshokin/appbundle/internal/service/layout"
	"github.com/oshokin/appbundle/internal/service/manifest"
	"github.com/oshokin/appbundle/internal/service/platform"
	"github.com/oshokin/appbundle/internal/service/resource"
	"github.com/oshokin/appbundle/internal/service/tool"
)

// Result describes what a pipeline run produced.
type Result struct {
	// RunID identifies the run in logs and in the attachments file.
	RunID string
	// Spec is the bundle that was built.
	Spec bundle.Spec
	// Layout is the bundle tree.
	Layout bundle.Layout
	// IsTarget reports whether the platform tools were used.
	IsTarget bool
	// Stage is the last stage reached, StageAborted after a fatal error.
	Stage Stage
	// Completed lists the stages that finished, in order.
	Completed []Stage
	// Dependencies are the copied artifacts in classpath order.
	Dependencies []bundle.ArtifactRef
	// ManifestEncoding is the encoding Info.plist was written in.
	ManifestEncoding string
	// ResourceCount is the number of additional resource files copied.
	ResourceCount int
	// Attachments are the outputs handed back to the build host.
	Attachments []bundle.Attachment
}

// Pipeline builds one application bundle from a validated configuration.
type Pipeline struct {
	cfg        *config.Config
	detector   platform.Detector
	runner     tool.Runner
	renderer   *manifest.Renderer
	repository attachment.Repository
	verbose    bool
	newRunID   func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDetector overrides host platform detection.
func WithDetector(detector platform.Detector) Option {
	return func(p *Pipeline) {
		p.detector = detector
	}
}

// WithRunner overrides how external tools are executed.
func WithRunner(runner tool.Runner) Option {
	return func(p *Pipeline) {
		p.runner = runner
	}
}

// WithRepository overrides where attachments are recorded.
func WithRepository(repository attachment.Repository) Option {
	return func(p *Pipeline) {
		p.repository = repository
	}
}

// WithRenderer overrides the manifest renderer.
func WithRenderer(renderer *manifest.Renderer) Option {
	return func(p *Pipeline) {
		p.renderer = renderer
	}
}

// WithVerbose enables signing diagnostics. They are also enabled whenever
// the context logger emits debug records.
func WithVerbose(verbose bool) Option {
	return func(p *Pipeline) {
		p.verbose = verbose
	}
}

// New creates a pipeline for cfg. cfg must have passed config.Validate.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		detector: platform.HostDetector{},
		runner:   tool.NewInvoker(),
		newRunID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.renderer == nil {
		p.renderer = manifest.NewRenderer(manifest.WithBaseDir(cfg.BaseDir()))
	}

	if p.repository == nil {
		p.repository = attachment.NewFileRepository(cfg.AttachmentsFile())
	}

	return p
}

// step is a single stage transition.
type step struct {
	stage   Stage
	action  string
	enabled bool
	run     func(ctx context.Context, r *run) error
}

// run carries the state of one execution.
type run struct {
	*Result

	toolkit *tool.Toolkit
	record  *attachment.Record
}

// Run executes every stage in order and stops at the first fatal error,
// leaving whatever was written on disk.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := p.newRunID()
	ctx = logger.WithKV(ctx, "run_id", runID)

	spec := p.cfg.Spec()

	r := &run{
		Result: &Result{
			RunID:  runID,
			Spec:   spec,
			Layout: bundle.NewLayout(p.cfg.BuildDirectory(), spec),
			Stage:  StageInitial,
		},
		toolkit: tool.NewToolkit(p.runner,
			tool.WithSetFile(p.cfg.Tools.SetFile),
			tool.WithVerbose(p.verbose || logger.IsDebugEnabled(ctx)),
			tool.WithSignTimeout(p.cfg.Codesign.Timeout)),
	}

	r.IsTarget = p.detector.IsTarget(ctx)

	logger.InfoKV(ctx, "Building application bundle",
		"bundle", r.Layout.BundleDir,
		"target_platform", r.IsTarget)

	if !r.IsTarget {
		logger.Warn(ctx, "Not running on macOS: the platform tools are skipped and no disk image is created")
	} else if spec.Signing.Enabled() && !spec.ShouldSign() {
		logger.WarnKV(ctx, "Signing skipped: the launcher keeps its original name, "+
			"set keep_stub_name to false to sign the bundle", "identity", spec.Signing.Identity)
	}

	for _, s := range p.steps(r) {
		if !s.enabled {
			continue
		}

		if err := s.run(ctx, r); err != nil {
			r.Stage = StageAborted

			logger.ErrorKV(ctx, "Packaging aborted", "stage", s.stage.String(), "error", err)

			return r.Result, fmt.Errorf("%s: %w", s.action, err)
		}

		r.Stage = s.stage
		r.Completed = append(r.Completed, s.stage)

		logger.DebugKV(ctx, "Stage completed", "stage", s.stage.String())
	}

	return r.Result, nil
}

func (p *Pipeline) steps(r *run) []step {
	var (
		onTarget   = r.IsTarget
		sign       = onTarget && r.Spec.ShouldSign()
		netEnabled = onTarget && p.cfg.Output.InternetEnable
	)

	return []step{
		{stage: StageLayoutCreated, action: "create bundle layout", enabled: true, run: p.createLayout},
		{stage: StageLauncherCopied, action: "copy launcher stub and icon", enabled: true, run: p.installLauncher},
		{stage: StageDependenciesCopied, action: "copy dependencies", enabled: true, run: p.copyDependencies},
		{stage: StageManifestWritten, action: "write manifest", enabled: true, run: p.writeManifest},
		{stage: StageResourcesCopied, action: "copy resources", enabled: true, run: p.copyResources},
		{stage: StagePermissionsFixed, action: "make launcher executable", enabled: true, run: p.fixPermissions},
		{stage: StageAttributeFlagged, action: "set bundle attribute", enabled: onTarget, run: p.flagAttribute},
		{stage: StageSigned, action: "sign bundle", enabled: sign, run: p.sign},
		{stage: StageDiskImageCreated, action: "create disk image", enabled: onTarget, run: p.createDiskImage},
		{stage: StageNetworkEnabled, action: "enable disk image for internet", enabled: netEnabled, run: p.enableNetwork},
		{stage: StageArtifactsAttached, action: "attach artifacts", enabled: true, run: p.attachArtifacts},
		{stage: StageArchiveCreated, action: "create archive", enabled: true, run: p.createArchive},
	}
}

func (p *Pipeline) createLayout(ctx context.Context, r *run) error {
	return layout.CreateSkeleton(ctx, r.Layout)
}

func (p *Pipeline) installLauncher(ctx context.Context, r *run) error {
	if err := layout.InstallLauncher(ctx, r.Spec, r.Layout, r.IsTarget); err != nil {
		return err
	}

	return layout.CopyIcon(ctx, r.Spec, r.Layout)
}

func (p *Pipeline) copyDependencies(ctx context.Context, r *run) error {
	refs, err := dependency.Collect(ctx, r.Layout.JavaDir,
		p.cfg.PrimaryArtifact(),
		p.cfg.Dependencies(),
		dependency.WithSortedDependencies(p.cfg.SortDependencies))
	if err != nil {
		return err
	}

	r.Dependencies = refs

	return nil
}

func (p *Pipeline) writeManifest(ctx context.Context, r *run) error {
	vars := manifest.NewContext(r.Spec, dependency.Paths(r.Dependencies), p.cfg.AdditionalClasspath)

	encoding, err := p.renderer.Write(ctx, p.cfg.Template, vars, r.Layout.Manifest)
	if err != nil {
		return err
	}

	r.ManifestEncoding = encoding

	return nil
}

func (p *Pipeline) copyResources(ctx context.Context, r *run) error {
	count, err := resource.Copy(ctx, r.Layout.BuildDir, p.cfg.Resources())
	if err != nil {
		return err
	}

	r.ResourceCount = count

	return nil
}

func (p *Pipeline) fixPermissions(ctx context.Context, r *run) error {
	return r.toolkit.MakeExecutable(ctx, r.Layout.Launcher, r.IsTarget)
}

func (p *Pipeline) flagAttribute(ctx context.Context, r *run) error {
	return r.toolkit.SetBundleAttribute(ctx, r.Layout.BundleDir)
}

func (p *Pipeline) sign(ctx context.Context, r *run) error {
	return r.toolkit.Sign(ctx, r.Spec.Signing, r.Layout.BundleDir)
}

func (p *Pipeline) createDiskImage(ctx context.Context, r *run) error {
	dmg := p.cfg.DiskImage()
	if err := r.toolkit.CreateDiskImage(ctx, r.Layout.BuildDir, dmg); err != nil {
		return err
	}

	r.Attachments = append(r.Attachments, bundle.Attachment{Classifier: bundle.ClassifierDiskImage, File: dmg})

	return nil
}

func (p *Pipeline) enableNetwork(ctx context.Context, r *run) error {
	return r.toolkit.InternetEnable(ctx, p.cfg.DiskImage())
}

func (p *Pipeline) attachArtifacts(ctx context.Context, r *run) error {
	r.record = &attachment.Record{
		RunID:  r.RunID,
		Bundle: r.Layout.BundleDir,
	}

	return p.saveRecord(ctx, r)
}

func (p *Pipeline) createArchive(ctx context.Context, r *run) error {
	zip := p.cfg.ZipFile()

	err := archive.Create(ctx, archive.Options{
		Target:   zip,
		BuildDir: r.Layout.BuildDir,
		Launcher: r.Layout.Launcher,
	})
	if err != nil {
		return err
	}

	r.Attachments = append(r.Attachments, bundle.Attachment{Classifier: bundle.ClassifierArchive, File: zip})

	return p.saveRecord(ctx, r)
}

func (p *Pipeline) saveRecord(ctx context.Context, r *run) error {
	r.record.Attachments = append([]bundle.Attachment(nil), r.Attachments...)
	r.record.UpdatedAt = time.Now().UTC()

	if err := p.repository.Save(ctx, r.record); err != nil {
		return fmt.Errorf("record attachments: %w", err)
	}

	for _, a := range r.Attachments {
		logger.DebugKV(ctx, "Attachment recorded", "classifier", a.Classifier, "file", a.File)
	}

	if file, ok := p.repository.(*attachment.FileRepository); ok {
		logger.InfoKV(ctx, "Attachments recorded", "path", file.Path(), "count", len(r.Attachments))
	}

	return nil
}
