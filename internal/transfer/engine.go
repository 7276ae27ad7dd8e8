// Package transfer moves files and folders between the local machine and a
// connected remote session, one job at a time.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/archive"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/metrics"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/remotepath"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ssh"
)

// Remote is the part of a session the engine borrows for a job.
// *ssh.Session satisfies it.
type Remote interface {
	IsConnected() bool
	Execute(ctx context.Context, command string, timeout time.Duration) (ssh.CommandResult, error)
	MakeDir(ctx context.Context, path string, timeout time.Duration) error
	Stat(path string) (os.FileInfo, error)
	Open(path string) (io.ReadCloser, error)
	Create(path string) (io.WriteCloser, error)
}

// Options tune the engine.
type Options struct {
	// BufferSize is the copy chunk and therefore the cancellation granularity.
	BufferSize     int
	CommandTimeout time.Duration
	ArchiveTimeout time.Duration
	// RemoteTempDir holds archives built on the remote host.
	RemoteTempDir string
	// LocalTempDir holds archives built locally. Empty means os.TempDir.
	LocalTempDir string
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		BufferSize:     32 * 1024,
		CommandTimeout: 60 * time.Second,
		ArchiveTimeout: 300 * time.Second,
		RemoteTempDir:  "/tmp",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BufferSize <= 0 {
		o.BufferSize = d.BufferSize
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = d.CommandTimeout
	}
	if o.ArchiveTimeout <= 0 {
		o.ArchiveTimeout = d.ArchiveTimeout
	}
	if o.RemoteTempDir == "" {
		o.RemoteTempDir = d.RemoteTempDir
	}
	return o
}

// Engine runs jobs against a Remote, one at a time. It keeps no per-job
// state, so one Engine may run any number of jobs one after another.
type Engine struct {
	remote  Remote
	opts    Options
	logger  zerolog.Logger
	metrics *metrics.Collector

	running atomic.Bool
}

// NewEngine creates an engine. metrics may be nil.
func NewEngine(remote Remote, opts Options, logger zerolog.Logger, m *metrics.Collector) *Engine {
	return &Engine{
		remote:  remote,
		opts:    opts.withDefaults(),
		logger:  logger.With().Str("component", "transfer").Logger(),
		metrics: m,
	}
}

// run is the state of a single job execution.
type run struct {
	*Engine
	ctx    context.Context
	job    Job
	emit   func(Event)
	logger zerolog.Logger
	bytes  int64
}

// Run executes job to completion, cancellation or first failure. emit
// receives every event in order from the calling goroutine; the last one is
// always EventFinished carrying the returned Result. A Run started while
// another is in progress on the same Engine fails with ErrJobInFlight and
// touches nothing.
func (e *Engine) Run(ctx context.Context, job Job, emit func(Event)) Result {
	if emit == nil {
		emit = func(Event) {}
	}
	if !e.running.CompareAndSwap(false, true) {
		e.logger.Warn().Str("job", job.ID.String()).Msg("job rejected, another job is running")
		result := Result{Err: ErrJobInFlight, Message: job.Kind.failurePrefix() + ErrJobInFlight.Error()}
		emit(Event{JobID: job.ID, Kind: job.Kind, Type: EventFinished, Result: &result})
		return result
	}

	r := &run{
		Engine: e,
		ctx:    ctx,
		job:    job,
		emit:   emit,
		logger: e.logger.With().Str("job", job.ID.String()).Str("kind", job.Kind.String()).Logger(),
	}

	start := time.Now()
	r.logger.Info().Strs("sources", job.Sources).Str("destination", job.Destination).Msg("job started")

	err := r.execute()
	result := r.finish(err)
	result.Duration = time.Since(start)
	e.running.Store(false)

	e.metrics.RecordJob(job.Kind.String(), result.Outcome(), result.Duration)
	r.logger.Info().
		Str("outcome", result.Outcome()).
		Str("bytes", humanize.IBytes(uint64(result.Bytes))).
		Dur("duration", result.Duration).
		Msg(result.Message)

	emit(Event{JobID: job.ID, Kind: job.Kind, Type: EventFinished, Result: &result})
	return result
}

func (r *run) execute() error {
	if err := r.job.Validate(); err != nil {
		return err
	}
	if !r.remote.IsConnected() {
		return ssh.ErrNotConnected
	}

	sources := r.job.sources()
	switch r.job.Kind {
	case UploadFiles:
		return r.uploadFiles(sources, r.job.Destination)
	case UploadFolder:
		return r.uploadFolder(sources[0], r.job.Destination, r.job.Extract)
	case DownloadFiles:
		return r.downloadFiles(sources, r.job.Destination)
	default:
		return r.downloadFolder(sources[0], r.job.Destination, r.job.Extract)
	}
}

func (r *run) finish(err error) Result {
	if err == nil {
		return Result{OK: true, Message: r.job.Kind.successMessage(), Bytes: r.bytes}
	}

	if r.ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		err = ErrCancelled
	}

	result := Result{Err: err, Bytes: r.bytes, Cancelled: errors.Is(err, ErrCancelled)}
	var sel *SelectionError
	if errors.As(err, &sel) {
		result.Message = sel.Reason
	} else {
		result.Message = r.job.Kind.failurePrefix() + err.Error()
	}
	return result
}

func (r *run) status(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Debug().Msg(msg)
	r.emit(Event{JobID: r.job.ID, Kind: r.job.Kind, Type: EventStatus, Status: msg})
}

func (r *run) progress(pct int) {
	r.emit(Event{JobID: r.job.ID, Kind: r.job.Kind, Type: EventProgress, Percent: pct})
}

// checkpoint is the per-file cancellation check.
func (r *run) checkpoint() error {
	if r.ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}

func (r *run) ensureRemoteDir(dir string) error {
	return r.remote.MakeDir(r.ctx, dir, r.opts.CommandTimeout)
}

// copy streams src into dst through the progress checkpoint.
func (r *run) copy(dst io.Writer, dstSide Side, dstPath string, src io.Reader, srcSide Side, srcPath string, total int64) error {
	direction := "download"
	if dstSide == SideRemote {
		direction = "upload"
	}
	pw := &progressWriter{
		ctx:    r.ctx,
		w:      dst,
		side:   dstSide,
		path:   dstPath,
		total:  total,
		report: r.progress,
		counted: func(n int) {
			r.bytes += int64(n)
			r.metrics.AddBytes(direction, n)
		},
	}
	buf := make([]byte, r.opts.BufferSize)
	_, err := io.CopyBuffer(pw, &sourceReader{r: src, side: srcSide, path: srcPath}, buf)
	return err
}

// putFile uploads one local file to remotePath.
func (r *run) putFile(localPath, remotePath string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return localErr("stat", localPath, err)
	}
	if info.IsDir() {
		return localErr("open", localPath, errors.New("is a directory"))
	}

	r.status("Uploading: %s", filepath.Base(localPath))
	r.progress(0)

	src, err := os.Open(localPath)
	if err != nil {
		return localErr("open", localPath, err)
	}
	defer src.Close()

	dst, err := r.remote.Create(remotePath)
	if err != nil {
		return remoteErr("create", remotePath, err)
	}
	if err := r.copy(dst, SideRemote, remotePath, src, SideLocal, localPath, info.Size()); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return remoteErr("close", remotePath, err)
	}

	r.progress(100)
	return nil
}

// getFile downloads remotePath to localPath. An unknown remote size only
// disables intermediate percentages.
func (r *run) getFile(remotePath, localPath string) error {
	var total int64
	if info, err := r.remote.Stat(remotePath); err == nil {
		total = info.Size()
	} else {
		r.logger.Debug().Err(err).Str("path", remotePath).Msg("size lookup failed, progress disabled")
	}

	r.status("Downloading: %s", remotepath.Base(remotePath))
	r.progress(0)

	src, err := r.remote.Open(remotePath)
	if err != nil {
		return remoteErr("open", remotePath, err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return localErr("create", localPath, err)
	}
	if err := r.copy(dst, SideLocal, localPath, src, SideRemote, remotePath, total); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return localErr("close", localPath, err)
	}

	r.progress(100)
	return nil
}

func (r *run) uploadFiles(localFiles []string, remoteDir string) error {
	remoteDir = remotepath.Normalize(remoteDir)

	r.status("Ensuring remote dir: %s", remoteDir)
	if err := r.ensureRemoteDir(remoteDir); err != nil {
		return err
	}

	for i, lp := range localFiles {
		if err := r.checkpoint(); err != nil {
			return err
		}
		rp := remotepath.Join(remoteDir, filepath.Base(lp))
		r.status("[%d/%d] Uploading file -> %s", i+1, len(localFiles), rp)
		if err := r.putFile(lp, rp); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) uploadFolder(localFolder, remoteDir string, extract bool) error {
	info, err := os.Stat(localFolder)
	if err != nil || !info.IsDir() {
		return &SelectionError{Reason: "Selected path is not a folder."}
	}

	remoteDir = remotepath.Normalize(remoteDir)
	abs, err := filepath.Abs(localFolder)
	if err != nil {
		return localErr("resolve", localFolder, err)
	}
	folderName := filepath.Base(abs)

	tmp, err := os.CreateTemp(r.opts.LocalTempDir, "sxtx-*_"+folderName+".tar.gz")
	if err != nil {
		return localErr("create", "temporary archive", err)
	}
	tarPath := tmp.Name()
	tmp.Close()
	defer func() {
		if err := os.Remove(tarPath); err != nil && !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Str("path", tarPath).Msg("failed to remove local temp archive")
		}
	}()

	r.status("Compressing folder...")
	r.progress(0)
	if err := archive.Create(abs, tarPath); err != nil {
		return localErr("archive", abs, err)
	}
	if err := r.checkpoint(); err != nil {
		return err
	}

	r.status("Ensuring remote dir...")
	if err := r.ensureRemoteDir(remoteDir); err != nil {
		return err
	}

	remoteTar := remotepath.Join(remoteDir, folderName+".tar.gz")
	r.status("Uploading compressed folder...")
	if err := r.putFile(tarPath, remoteTar); err != nil {
		return err
	}

	if !extract {
		return nil
	}
	if err := r.checkpoint(); err != nil {
		return err
	}

	r.status("Extracting on remote...")
	command := ssh.ExtractCommand(remoteTar, remoteDir)
	result, err := r.remote.Execute(r.ctx, command, r.opts.ArchiveTimeout)
	if err != nil {
		return err
	}
	if err := result.CheckExit(command); err != nil {
		return fmt.Errorf("remote extract failed: %w", err)
	}
	return nil
}

func (r *run) prepareLocalDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", localErr("resolve", dir, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return "", localErr("mkdir", abs, err)
	}
	return abs, nil
}

func (r *run) downloadFiles(remoteFiles []string, localDir string) error {
	localDir, err := r.prepareLocalDir(localDir)
	if err != nil {
		return err
	}

	for i, rp := range remoteFiles {
		if err := r.checkpoint(); err != nil {
			return err
		}
		rp = remotepath.Normalize(rp)
		if trimmed := strings.TrimRight(rp, "/"); trimmed != "" {
			rp = trimmed
		}
		lp := filepath.Join(localDir, remotepath.Base(rp))
		r.status("[%d/%d] Downloading -> %s", i+1, len(remoteFiles), lp)
		if err := r.getFile(rp, lp); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) downloadFolder(remoteFolder, localDir string, extract bool) error {
	remoteFolder = remotepath.Normalize(remoteFolder)
	folderName := remotepath.Base(remoteFolder)
	if folderName == "" {
		return &SelectionError{Reason: "Cannot download the remote root as a folder."}
	}

	localDir, err := r.prepareLocalDir(localDir)
	if err != nil {
		return err
	}

	remoteTar := remotepath.Join(r.opts.RemoteTempDir, fmt.Sprintf("%s_%d.tar.gz", folderName, time.Now().UnixNano()))
	localTar := filepath.Join(localDir, path.Base(remoteTar))

	r.status("Creating archive on remote...")
	command := ssh.ArchiveCommand(remoteTar, remotepath.Parent(remoteFolder), folderName)
	result, err := r.remote.Execute(r.ctx, command, r.opts.ArchiveTimeout)
	if err != nil {
		r.removeRemote(remoteTar)
		return err
	}
	if err := result.CheckExit(command); err != nil {
		r.removeRemote(remoteTar)
		return fmt.Errorf("remote archive failed: %w", err)
	}

	r.status("Downloading archive...")
	if err := r.getFile(remoteTar, localTar); err != nil {
		r.removeRemote(remoteTar)
		return err
	}

	r.status("Cleaning remote temp...")
	r.removeRemote(remoteTar)

	if !extract {
		return nil
	}
	if err := r.checkpoint(); err != nil {
		return err
	}

	r.status("Extracting locally...")
	if err := archive.Extract(localTar, localDir); err != nil {
		return localErr("extract", localTar, err)
	}
	if err := os.Remove(localTar); err != nil {
		r.logger.Warn().Err(err).Str("path", localTar).Msg("failed to remove local archive")
	}
	return nil
}

// removeRemote deletes a remote temp file. It runs even after cancellation
// and never fails the job.
func (r *run) removeRemote(p string) {
	ctx := context.WithoutCancel(r.ctx)
	command := ssh.RemoveCommand(p)
	result, err := r.remote.Execute(ctx, command, r.opts.CommandTimeout)
	if err == nil {
		err = result.CheckExit(command)
	}
	if err != nil {
		r.logger.Warn().Err(err).Str("path", p).Msg("failed to remove remote temp archive")
	}
}
