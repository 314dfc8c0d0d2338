// Command lltree derives L-systems written in the lltree language.
//
// Each file argument is derived on its own; with several files they are
// worked on concurrently and printed in argument order. Without arguments
// the definition is read from standard input. Files ending in .yml or .yaml
// are read as lsif streams of already derived systems.
//
//	lltree -seed 7 -tree bush.ls
//	lltree -format yaml *.ls > forest.lsif.yml
//	lltree -i bush.ls
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	lsystem "github.com/lakinwecker/ll-cool-tree"
	"github.com/lakinwecker/ll-cool-tree/interchange/lsif"
	"github.com/lakinwecker/ll-cool-tree/lang"
	"github.com/lakinwecker/ll-cool-tree/turtle"
)

type config struct {
	seed        int64
	iterations  int
	format      string
	tree        bool
	local       bool
	workers     int
	interactive bool
	verbose     bool
}

func parseFlags(args []string, ew io.Writer) (config, []string, error) {
	var cfg config
	fs := flag.NewFlagSet("lltree", flag.ContinueOnError)
	fs.SetOutput(ew)
	fs.Int64Var(&cfg.seed, "seed", 0, "seed for rule selection, 0 seeds from the clock")
	fs.IntVar(&cfg.iterations, "iterations", -1, "override the number of iterations of every system")
	fs.StringVar(&cfg.format, "format", "text", "output format: text or yaml")
	fs.BoolVar(&cfg.tree, "tree", false, "interpret the derivation with the turtle and output the tree")
	fs.BoolVar(&cfg.local, "local", false, "with -tree, output orientations relative to the parent segment")
	fs.IntVar(&cfg.workers, "workers", runtime.NumCPU(), "systems derived concurrently")
	fs.BoolVar(&cfg.interactive, "i", false, "start an interactive session")
	fs.BoolVar(&cfg.verbose, "v", false, "log progress")
	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}

	switch cfg.format {
	case "text", "yaml":
	default:
		return cfg, nil, errors.Errorf("unknown format %q, want text or yaml", cfg.format)
	}
	return cfg, fs.Args(), nil
}

func main() {
	logger := log.New(os.Stderr, "lltree: ", 0)

	cfg, files, err := parseFlags(os.Args[1:], os.Stderr)
	if err == flag.ErrHelp {
		return
	} else if err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if cfg.interactive {
		err = repl(ctx, os.Stdout, files, cfg)
	} else {
		err = derive(ctx, os.Stdout, os.Stdin, logger, files, cfg)
	}
	stop()
	if err != nil {
		logger.Fatal(err)
	}
}

// derive runs every input through the pipeline and writes the results to w in
// input order. Failed inputs are logged and skipped.
func derive(ctx context.Context, w io.Writer, r io.Reader, logger *log.Logger, files []string, cfg config) error {
	in, out := buildPipeline(ctx, cfg)

	done := make(chan error, 1)
	go func() {
		done <- drain(w, out, logger, cfg, len(files) > 1)
	}()

	if len(files) == 0 {
		load("-", r, in)
	}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			in <- &job{name: name, err: err}
			continue
		}
		load(name, f, in)
		f.Close()
	}
	close(in)

	return <-done
}

// load sends the systems read from r to the pipeline.
func load(name string, r io.Reader, in chan<- *job) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml":
		dec := lsif.NewDecoder(r)
		for i := 0; ; i++ {
			f, err := dec.Decode()
			if err == io.EOF {
				return
			} else if err != nil {
				in <- &job{name: name, err: errors.Wrapf(err, "%s: document %d", name, i)}
				return
			}
			docName := f.Name
			if docName == "" {
				docName = fmt.Sprintf("%s#%d", name, i)
			}
			in <- &job{name: docName, imported: f}
		}
	default:
		params, err := lang.Parse(r)
		in <- &job{name: name, params: params, err: errors.Wrap(err, name)}
	}
}

func drain(w io.Writer, out <-chan *job, logger *log.Logger, cfg config, headers bool) error {
	bw := bufio.NewWriter(w)
	var enc *lsif.Encoder
	if cfg.format == "yaml" {
		enc = lsif.NewEncoder(bw)
	}

	total, failed := 0, 0
	var werr error
	for j := range out {
		total++
		if j.err != nil {
			failed++
			logger.Print(j.err)
			continue
		}
		if cfg.verbose {
			logger.Printf("%s: %d modules, seed %d", j.name, len(j.modules), j.seed)
			if j.tree != nil && j.tree.Overflows+j.tree.Underflows > 0 {
				logger.Printf("%s: %d pushes dropped on a full stack, %d pops on an empty one",
					j.name, j.tree.Overflows, j.tree.Underflows)
			}
		}
		if werr != nil {
			continue
		}
		if enc != nil {
			werr = writeYAML(enc, j)
		} else {
			writeText(bw, j, headers)
		}
	}

	if enc != nil && werr == nil {
		werr = enc.Close()
	}
	if err := bw.Flush(); werr == nil {
		werr = err
	}
	if werr != nil {
		return errors.Wrap(werr, "writing output")
	}
	if failed > 0 {
		return errors.Errorf("%d of %d inputs failed", failed, total)
	}
	return nil
}

func writeYAML(enc *lsif.Encoder, j *job) error {
	f := lsif.New(j.name, j.params, j.seed, j.modules)
	if j.tree != nil {
		f.SetTree(j.tree.Root)
	}
	return enc.Encode(f)
}

func writeText(w *bufio.Writer, j *job, header bool) {
	if header {
		fmt.Fprintf(w, "# %s\n", j.name)
	}
	fmt.Fprintln(w, lsystem.Modules(j.modules))
	if j.tree == nil {
		return
	}
	writeTree(w, j.tree)
}

func writeTree(w io.Writer, res *turtle.Result) {
	res.Root.Walk(func(s *turtle.State, depth int) {
		if depth == 0 {
			return
		}
		q := s.Rest
		fmt.Fprintf(w, "%s(%.4g, %.4g, %.4g) q=(%.4g, %.4g, %.4g, %.4g) width=%.4g length=%.4g\n",
			strings.Repeat("  ", depth-1),
			s.Position.X, s.Position.Y, s.Position.Z,
			q.W, q.X, q.Y, q.Z,
			s.Width, s.Length)
	})
	fmt.Fprintf(w, "segments: %d, branches: %d, leaves: %d\n",
		res.Root.Count()-1, len(res.Branches), len(res.Leaves))
}
