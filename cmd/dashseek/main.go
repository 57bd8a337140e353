// Command dashseek resolves the media segment URL for a playback position
// in a DASH manifest, or lists the streams the manifest offers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"dashseek/internal/dash"
	"dashseek/internal/logger"
	"dashseek/internal/manifest"

	"github.com/spf13/pflag"
)

const fetchTimeout = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	file      string
	url       string
	base      string
	position  float64
	mimeType  string
	role      string
	bandwidth uint64
	list      bool
	absolute  bool
	userAgent string
	logLevel  string
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options

	fs := pflag.NewFlagSet("dashseek", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.file, "file", "f", "", "read the manifest from a file (- for stdin)")
	fs.StringVarP(&opts.url, "url", "u", "", "fetch the manifest from a URL")
	fs.StringVar(&opts.base, "base", "", "URL the manifest file was served from, for --absolute")
	fs.Float64VarP(&opts.position, "position", "p", 0, "playback position in seconds")
	fs.StringVarP(&opts.mimeType, "mime", "m", "video/mp4", "mimeType of the adaptation set")
	fs.StringVarP(&opts.role, "role", "r", dash.DefaultRole, "role of the adaptation set")
	fs.Uint64VarP(&opts.bandwidth, "bandwidth", "b", 0, "bandwidth of the representation in bits/s")
	fs.BoolVar(&opts.list, "list", false, "list the streams offered by the manifest")
	fs.BoolVar(&opts.absolute, "absolute", false, "print an absolute URL")
	fs.StringVar(&opts.userAgent, "user-agent", "", "User-Agent header for --url")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level (error, warn, info, debug)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if (opts.file == "") == (opts.url == "") {
		fmt.Fprintln(stderr, "exactly one of --file or --url is required")
		return 2
	}
	if !opts.list && !fs.Changed("position") {
		fmt.Fprintln(stderr, "--position is required")
		return 2
	}

	log := logger.New(stderr, "hclog", opts.logLevel)

	document, baseURL, err := readManifest(opts, log)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	tree, err := manifest.Parse(document)
	if err != nil {
		log.Errorf("Failed to parse manifest: %v", err)
		return fail(stderr, err)
	}

	if opts.list {
		return listStreams(tree, stdout, stderr)
	}

	resolver := dash.NewResolver(log)
	segment, err := resolver.ResolveTree(tree, dash.Request{
		Position:  opts.position,
		MimeType:  opts.mimeType,
		Role:      opts.role,
		Bandwidth: opts.bandwidth,
	})
	if err != nil {
		return fail(stderr, err)
	}

	out := segment.URL
	if opts.absolute {
		if baseURL == "" {
			fmt.Fprintln(stderr, "--absolute needs --url or --base")
			return 2
		}
		period := tree.ChildrenByTag(tree.Root(), "Period")[segment.PeriodIndex]
		out, err = dash.AbsoluteURL(baseURL, tree, period, segment.URL)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}

	fmt.Fprintln(stdout, out)
	return 0
}

// readManifest returns the manifest text and the URL relative paths resolve against.
func readManifest(opts options, log logger.Logger) (string, string, error) {
	if opts.url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return dash.NewClient(log).FetchManifest(ctx, opts.url, opts.userAgent)
	}

	var data []byte
	var err error
	if opts.file == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(opts.file)
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to read manifest: %w", err)
	}
	return string(data), opts.base, nil
}

func listStreams(tree *manifest.Tree, stdout, stderr io.Writer) int {
	streams, err := dash.ListStreams(tree)
	if err != nil {
		return fail(stderr, err)
	}
	for _, s := range streams {
		bws := make([]string, len(s.Bandwidths))
		for i, bw := range s.Bandwidths {
			bws[i] = strconv.FormatUint(bw, 10)
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", s.MimeType, s.Role, strings.Join(bws, ","))
	}
	return 0
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "error [%s]: %v\n", dash.KindOf(err), err)
	return 1
}
