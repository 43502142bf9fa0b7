package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/boreimp/internal/bore"
	"github.com/specialistvlad/boreimp/internal/ctxlog"
	"github.com/specialistvlad/boreimp/internal/fsutil"
	"github.com/specialistvlad/boreimp/pkg/calcimp"
)

const (
	resultExt = ".csv"
	dumpExt   = ".dump.csv"
)

// Run executes the main application logic based on the configuration. In
// batch mode every file is attempted and the failures are joined.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	opts, err := a.config.Options()
	if err != nil {
		return err
	}
	files, batch, err := a.inputs()
	if err != nil {
		return err
	}
	if batch && a.config.ConvertPath != "" {
		return errors.New("convert requires a single bore file, not a directory")
	}
	a.logger.Debug("Inputs collected.", "files", len(files), "batch", batch)

	var errs []error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.process(ctx, path, batch, opts); err != nil {
			if !batch {
				return err
			}
			a.logger.Error("Bore file failed.", "file", path, "kind", bore.KindOf(err).String(), "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d bore files failed: %w", len(errs), len(files), errors.Join(errs...))
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// inputs expands the bore path into the files to process.
func (a *App) inputs() ([]string, bool, error) {
	root := a.config.BorePath
	info, err := os.Stat(root)
	if err != nil {
		return nil, false, bore.IO(root, err)
	}
	if !info.IsDir() {
		return []string{root}, false, nil
	}
	files, err := fsutil.FindBoreFiles(root)
	if err != nil {
		return nil, true, bore.IO(root, err)
	}
	if len(files) == 0 {
		return nil, true, fmt.Errorf("no .men or .xmen files found in %s", root)
	}
	return files, true, nil
}

func (a *App) process(ctx context.Context, path string, batch bool, opts calcimp.Options) error {
	switch {
	case a.config.ConvertPath != "":
		if err := calcimp.ConvertStructuredToCanonical(ctx, path, a.config.ConvertPath, opts); err != nil {
			return err
		}
		a.logger.Info("Converted bore.", "input", path, "output", a.config.ConvertPath)
		return nil

	case a.config.Dump:
		tuples, err := calcimp.DumpCanonicalSegments(ctx, path, opts)
		if err != nil {
			return err
		}
		a.logger.Info("Resolved bore.", "file", path, "segments", len(tuples))
		return a.emit(path, batch, dumpExt, func(w io.Writer) error { return writeTuples(w, tuples) })

	default:
		res, err := calcimp.ComputeImpedance(ctx, path, opts)
		if err != nil {
			return err
		}
		a.logger.Info("Computed impedance.", "file", path, "points", res.Len())
		return a.emit(path, batch, resultExt, func(w io.Writer) error { return writeImpedance(w, res) })
	}
}

// emit sends output for path to the app writer, the output file, or in
// batch mode a file named after the input.
func (a *App) emit(path string, batch bool, ext string, write func(io.Writer) error) error {
	dest := a.config.OutputPath
	if batch {
		dest = a.batchOutput(path, ext)
	}
	if dest == "" {
		return write(a.outW)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return bore.IO(dest, err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return bore.IO(dest, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return bore.IO(dest, err)
	}
	if err := f.Close(); err != nil {
		return bore.IO(dest, err)
	}
	a.logger.Debug("Wrote output.", "file", dest)
	return nil
}

// batchOutput mirrors the input tree below OutputPath, or writes next to
// the input when no output directory is configured.
func (a *App) batchOutput(path, ext string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path)) + ext
	if a.config.OutputPath == "" {
		return base
	}
	rel, err := filepath.Rel(a.config.BorePath, base)
	if err != nil {
		rel = filepath.Base(base)
	}
	return filepath.Join(a.config.OutputPath, rel)
}
