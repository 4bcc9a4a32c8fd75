package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tiffs2pdfs/config"
	"tiffs2pdfs/converter"
	"tiffs2pdfs/logging"
	"tiffs2pdfs/reporter"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tiffs2pdfs ROOT",
		Short: "Merge the TIFF files of every directory under ROOT into one PDF per directory",
		Long: `tiffs2pdfs walks ROOT recursively, groups .tif and .tiff files by the
directory they are in, and writes one multi-page PDF per directory next to the
source files. The PDF is named after the first TIFF file of the directory and
every page is as large as its image in pixels.

Files that cannot be decoded are reported and skipped; the run continues.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	flags, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	flags.InputRootDir = args[0]

	out := cmd.OutOrStdout()
	log := logging.InitLogger(logging.Options{
		Level:      flags.LogLevel,
		Console:    out,
		Color:      isTerminal(out),
		File:       flags.LogFile,
		MaxSizeMB:  flags.LogMaxSizeMB,
		MaxBackups: flags.LogMaxBackups,
		MaxAgeDays: flags.LogMaxAgeDays,
		Compress:   flags.LogCompress,
	})
	defer logging.Close()

	if flags.ConfigFile != "" {
		logging.Info("using config file", "path", flags.ConfigFile)
	}

	report := reporter.New(log)
	if _, err := converter.Run(flags.InputRootDir, converter.New(report), report); err != nil {
		logging.Error("run aborted", "root", flags.InputRootDir, "error", err.Error())
		return err
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
