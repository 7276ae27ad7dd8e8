package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/browser"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/transfer"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ui/components"
)

func newLsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [remote-dir]",
		Short: "List a remote directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.connect(cmd)
			if err != nil {
				return err
			}
			defer r.Disconnect()

			target := r.cwd
			if len(args) == 1 {
				target = r.resolve(args[0])
			}

			dir := browser.NewDirectory(target)
			ctx, cancel := a.commandContext(cmd)
			defer cancel()
			if err := dir.Refresh(ctx, r); err != nil {
				return fmt.Errorf("failed to list %s: %w", target, err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, e := range dir.Entries() {
				kind, size, mtime := components.EntryColumns(e)
				name := e.Name
				if e.IsDir {
					name += "/"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", kind, size, mtime, name)
			}
			return w.Flush()
		},
	}
}

func newMkdirCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <remote-dir>",
		Short: "Create a remote directory and its parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.connect(cmd)
			if err != nil {
				return err
			}
			defer r.Disconnect()

			target := r.resolve(args[0])
			ctx, cancel := a.commandContext(cmd)
			defer cancel()
			if err := r.MakeDir(ctx, target, a.settings.CommandTimeout); err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", target)
			return nil
		},
	}
}

func newPutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <local-file>... <remote-dir>",
		Short: "Upload files into a remote directory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := absPaths(args[:len(args)-1])
			if err != nil {
				return err
			}
			return a.runJob(cmd, func(r *remote) transfer.Job {
				return transfer.NewUploadFiles(files, r.resolve(args[len(args)-1]))
			})
		},
	}
}

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <remote-file>... <local-dir>",
		Short: "Download remote files into a local directory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := filepath.Abs(args[len(args)-1])
			if err != nil {
				return err
			}
			return a.runJob(cmd, func(r *remote) transfer.Job {
				files := make([]string, 0, len(args)-1)
				for _, f := range args[:len(args)-1] {
					files = append(files, r.resolve(f))
				}
				return transfer.NewDownloadFiles(files, local)
			})
		},
	}
}

func newPutDirCommand(a *app) *cobra.Command {
	var noExtract bool
	cmd := &cobra.Command{
		Use:   "put-dir <local-dir> <remote-dir>",
		Short: "Upload a folder as an archive and unpack it remotely",
		Long: `Upload a local folder into a remote directory. The folder is packed into a
gzip tar archive, uploaded, and unpacked with tar on the remote host unless
--no-extract is given, in which case the archive is left in place.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			return a.runJob(cmd, func(r *remote) transfer.Job {
				return transfer.NewUploadFolder(folder, r.resolve(args[1]), !noExtract)
			})
		},
	}
	cmd.Flags().BoolVar(&noExtract, "no-extract", false, "Keep the uploaded archive instead of unpacking it")
	return cmd
}

func newGetDirCommand(a *app) *cobra.Command {
	var noExtract bool
	cmd := &cobra.Command{
		Use:   "get-dir <remote-dir> <local-dir>",
		Short: "Download a remote folder as an archive and unpack it locally",
		Long: `Download a remote folder into a local directory. The folder is packed with
tar on the remote host, downloaded, and unpacked locally unless --no-extract
is given, in which case the .tar.gz file is kept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}
			return a.runJob(cmd, func(r *remote) transfer.Job {
				return transfer.NewDownloadFolder(r.resolve(args[0]), local, !noExtract)
			})
		},
	}
	cmd.Flags().BoolVar(&noExtract, "no-extract", false, "Keep the downloaded archive instead of unpacking it")
	return cmd
}

// runJob connects, builds the job against the remote working directory and
// runs it in the foreground. An interrupt cancels the job.
func (a *app) runJob(cmd *cobra.Command, build func(*remote) transfer.Job) error {
	r, err := a.connect(cmd)
	if err != nil {
		return err
	}
	defer r.Disconnect()

	job := build(r)
	if err := job.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	bar := newProgressReporter(cmd.ErrOrStderr(), "Starting...")
	engine := transfer.NewEngine(r, a.settings.TransferOptions(), a.logger, a.metrics)
	result := engine.Run(ctx, job, bar.handle)

	if !result.OK {
		return &jobError{result: result}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s in %s)\n",
		result.Message,
		humanize.IBytes(uint64(result.Bytes)),
		result.Duration.Round(time.Millisecond))
	return nil
}

// jobError reports a failed job by its user-facing message and keeps the
// cause reachable for errors.Is.
type jobError struct {
	result transfer.Result
}

func (e *jobError) Error() string {
	return e.result.Message
}

func (e *jobError) Unwrap() error {
	return e.result.Err
}

// commandContext bounds a short remote operation by the command timeout.
func (a *app) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.settings.CommandTimeout > 0 {
		return context.WithTimeout(ctx, a.settings.CommandTimeout)
	}
	return context.WithCancel(ctx)
}

func absPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	return out, nil
}
