package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	lsystem "github.com/lakinwecker/ll-cool-tree"
	"github.com/lakinwecker/ll-cool-tree/lang"
	"github.com/lakinwecker/ll-cool-tree/turtle"
)

const replHelp = `expressions are evaluated against the globals, e.g. angle * 2
  name : expr     set a global; it overrides the loaded definition's
  :load FILE      load a definition
  :derive [N]     derive the loaded definition, N iterations if given
  :seed N         seed for :derive, 0 seeds from the clock
  :globals        list the globals
  :help
  :quit`

// session is the state of an interactive session.
type session struct {
	w   io.Writer
	cfg config

	globals lsystem.SymbolTable
	params  *lsystem.Parameters
	name    string
	seed    int64
}

func newSession(w io.Writer, cfg config) *session {
	return &session{
		w:       w,
		cfg:     cfg,
		globals: lsystem.SymbolTable{},
		seed:    cfg.seed,
	}
}

func repl(ctx context.Context, w io.Writer, files []string, cfg config) error {
	s := newSession(w, cfg)
	for _, name := range files {
		if err := s.load(name); err != nil {
			return err
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	for {
		line, err := ln.Prompt("lltree> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Wrap(err, "reading input")
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		quit, err := s.exec(ctx, line)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// exec runs one line of input.
func (s *session) exec(ctx context.Context, line string) (quit bool, err error) {
	if strings.HasPrefix(line, ":") {
		fields := strings.Fields(line)
		switch fields[0] {
		case ":q", ":quit":
			return true, nil
		case ":help":
			fmt.Fprintln(s.w, replHelp)
		case ":load":
			if len(fields) != 2 {
				return false, errors.New("usage: :load FILE")
			}
			return false, s.load(fields[1])
		case ":derive":
			iterations := -1
			if len(fields) > 1 {
				n, err := strconv.ParseUint(fields[1], 10, 32)
				if err != nil {
					return false, errors.Wrap(err, "iterations")
				}
				iterations = int(n)
			}
			return false, s.derive(ctx, iterations)
		case ":seed":
			if len(fields) != 2 {
				return false, errors.New("usage: :seed N")
			}
			seed, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return false, errors.Wrap(err, "seed")
			}
			s.seed = seed
		case ":globals":
			s.listGlobals()
		default:
			return false, errors.Errorf("unknown command %s, try :help", fields[0])
		}
		return false, nil
	}

	if name, src, ok := assignment(line); ok {
		v, err := s.evaluate(src)
		if err != nil {
			return false, err
		}
		s.globals[name] = v
		fmt.Fprintf(s.w, "%s = %g\n", name, v)
		return false, nil
	}

	v, err := s.evaluate(line)
	if err != nil {
		return false, err
	}
	fmt.Fprintf(s.w, "%g\n", v)
	return false, nil
}

// assignment splits "name : expr".
func assignment(line string) (name, src string, ok bool) {
	name, src, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}
	for _, r := range name {
		if r < 'a' || r > 'z' {
			return "", "", false
		}
	}
	return name, src, true
}

// env is the loaded definition's globals overridden by the session's.
func (s *session) env() lsystem.SymbolTable {
	var env lsystem.SymbolTable
	if s.params != nil {
		env = s.params.Globals.Clone()
	} else {
		env = lsystem.SymbolTable{}
	}
	for k, v := range s.globals {
		env[k] = v
	}
	return env
}

func (s *session) evaluate(src string) (float64, error) {
	lex := lang.NewLexer(strings.NewReader(src))
	e, err := lang.ParseExpression(lex)
	if err != nil {
		return 0, err
	}
	tok, err := lex.Lex()
	if err != nil {
		return 0, err
	}
	if tok.Kind != lang.EOF {
		return 0, errors.Errorf("unexpected %s after the expression", tok)
	}
	return e.Evaluate(s.env())
}

func (s *session) load(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	params, err := lang.Parse(f)
	if err != nil {
		return errors.Wrap(err, name)
	}
	s.params, s.name = params, name
	fmt.Fprintf(s.w, "%s: %d productions, %d start modules, %d iterations\n",
		name, params.Productions.Len(), len(params.Axiom), params.Iterations)
	return nil
}

func (s *session) derive(ctx context.Context, iterations int) error {
	if s.params == nil {
		return errors.New("nothing loaded, use :load FILE")
	}
	params := *s.params
	params.Globals = s.env()
	if iterations >= 0 {
		params.Iterations = uint(iterations)
	}

	ls := lsystem.New(params, lsystem.WithSeed(s.seed))
	modules, err := ls.EvaluateSystem(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.w, "%s, seed %d: %s\n", s.name, ls.Seed(), lsystem.Modules(modules))

	if s.cfg.tree {
		res := turtle.NewInterpreter().Run(modules)
		if s.cfg.local {
			res.Root.ConvertLocal()
		}
		writeTree(s.w, res)
	}
	return nil
}

func (s *session) listGlobals() {
	env := s.env()
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(s.w, "%s = %g\n", name, env[name])
	}
}
