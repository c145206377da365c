// Command csvinspect runs the dataset loader against a file and reports which
// encoding was used, the inferred columns, and the record count. With --json
// it prints the same JSON array the API would serve.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/JonMunkholm/operadoras/internal/core"
	"github.com/JonMunkholm/operadoras/internal/logging"
)

func main() {
	os.Exit(realMain(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func realMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newCommand(stdout)
	if err := cmd.Run(ctx, args); err != nil {
		fmt.Fprintln(stderr, core.FormatUserError(err))
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func newCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "csvinspect",
		Usage:     "inspect how the operadoras loader reads a CSV file",
		UsageText: "csvinspect --file PATH [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "path to the semicolon-delimited CSV",
				Sources:  cli.EnvVars("SOURCE_PATH", "CSV_FILE_PATH"),
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "encodings",
				Aliases: []string{"e"},
				Usage:   "candidate encodings in the order they are tried",
				Value:   core.DefaultEncodings,
			},
			&cli.StringFlag{
				Name:    "delimiter",
				Aliases: []string{"d"},
				Usage:   "single-character field separator",
				Value:   ";",
			},
			&cli.BoolFlag{
				Name:  "no-infer",
				Usage: "keep every value as text",
			},
			&cli.BoolFlag{
				Name:  "lenient",
				Usage: "try the next encoding after a structural parse error",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the records as the API would serve them",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
				Value: "warn",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return inspect(ctx, cmd, stdout)
		},
	}
}

func inspect(ctx context.Context, cmd *cli.Command, stdout io.Writer) error {
	logging.Setup(logging.Options{Level: cmd.String("log-level"), Format: "text"})

	delim := cmd.String("delimiter")
	if utf8.RuneCountInString(delim) != 1 {
		return fmt.Errorf("--delimiter must be a single character, got %q", delim)
	}
	r, _ := utf8.DecodeRuneInString(delim)

	loader, err := core.NewLoader(core.LoaderConfig{
		Encodings:  cmd.StringSlice("encodings"),
		Delimiter:  r,
		InferTypes: !cmd.Bool("no-infer"),
		Lenient:    cmd.Bool("lenient"),
	}, nil)
	if err != nil {
		return err
	}

	cache := core.NewCache(cmd.String("file"), loader, nil)
	ds, err := cache.Get(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		_, err := stdout.Write(append(ds.JSON(), '\n'))
		return err
	}
	return printSummary(stdout, ds)
}

func printSummary(w io.Writer, ds *core.Dataset) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "file:\t%s\n", ds.Source)
	fmt.Fprintf(tw, "size:\t%s\n", humanize.Bytes(uint64(ds.SizeBytes)))
	fmt.Fprintf(tw, "encoding:\t%s\n", ds.Encoding)
	fmt.Fprintf(tw, "records:\t%s\n", humanize.Comma(int64(ds.Len())))

	fmt.Fprintln(tw, "\nattempts:")
	for _, a := range ds.Attempts {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", a.Encoding, a.Outcome, a.Error)
	}

	fmt.Fprintln(tw, "\ncolumns:")
	for i, col := range ds.Columns {
		fmt.Fprintf(tw, "  %s\t%s\n", col, ds.Kinds[i])
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if ds.Len() > 0 {
		sample, err := json.MarshalIndent(ds.Records[0], "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nfirst record:\n%s\n", sample)
	}
	return nil
}
