package main

import (
	"context"
	"reflect"

	lsystem "github.com/lakinwecker/ll-cool-tree"
	"github.com/lakinwecker/ll-cool-tree/interchange"
	"github.com/lakinwecker/ll-cool-tree/turtle"
)

const (
	sequencerQueueSize = 5
	jobInQueueSize     = 5
	jobOutQueueSize    = 0
	outQueueSize       = 5
)

// job is one derivation going through the pipeline. Either params or
// imported is set by the loader; the worker fills in the rest.
type job struct {
	seq  int
	name string

	params   *lsystem.Parameters
	imported interchange.Format

	seed    int64
	modules []lsystem.Module
	tree    *turtle.Result
	err     error
}

func (j *job) process(ctx context.Context, cfg config) {
	if j.err != nil {
		return
	}

	if j.imported != nil {
		j.modules, j.err = j.imported.Import()
	} else {
		params := *j.params
		if cfg.iterations >= 0 {
			params.Iterations = uint(cfg.iterations)
		}
		var opts []lsystem.Option
		if cfg.seed != 0 {
			opts = append(opts, lsystem.WithSeed(cfg.seed))
		}
		ls := lsystem.New(params, opts...)
		j.seed = ls.Seed()
		j.params = &params
		j.modules, j.err = ls.EvaluateSystem(ctx)
	}
	if j.err != nil || !cfg.tree {
		return
	}

	in := turtle.NewInterpreter()
	j.tree = in.Run(j.modules)
	if cfg.local {
		j.tree.Root.ConvertLocal()
	}
}

// buildPipeline starts the stages. Jobs sent on in come out of out in the same
// order, whatever order the workers finish them in.
func buildPipeline(ctx context.Context, cfg config) (in chan<- *job, out <-chan *job) {
	workers := cfg.workers
	if workers < 1 {
		workers = 1
	}

	sequencerQueue := make(chan *job, sequencerQueueSize)
	jobInQueue := make(chan *job, jobInQueueSize)
	outQueue := make(chan *job, outQueueSize)
	jobOutQueues := make([]<-chan *job, workers)

	go sequence(sequencerQueue, jobInQueue)
	for i := range jobOutQueues {
		q := make(chan *job, jobOutQueueSize)
		go run(ctx, cfg, jobInQueue, q)
		jobOutQueues[i] = q
	}
	go resolve(jobOutQueues, outQueue)

	return sequencerQueue, outQueue
}

func sequence(in <-chan *job, jobInQueue chan<- *job) {
	seq := 0
	for j := range in {
		j.seq = seq
		jobInQueue <- j
		seq++
	}
	close(jobInQueue)
}

func run(ctx context.Context, cfg config, jobInQueue <-chan *job, jobOutQueue chan<- *job) {
	for j := range jobInQueue {
		j.process(ctx, cfg)
		jobOutQueue <- j
	}
	close(jobOutQueue)
}

// resolve puts the jobs back in sequence order.
//
// Each worker queue has one slot in the buffer. A queue whose slot is taken
// isn't selected on until the job it holds has been sent, so the worker
// holding the next job in sequence can always be received from.
func resolve(jobOutQueues []<-chan *job, out chan<- *job) {
	next := 0
	buffer := make([]*job, len(jobOutQueues))
	closed := make([]bool, len(jobOutQueues))

	flush := func() {
		for sent := true; sent; {
			sent = false
			for i, buffered := range buffer {
				if buffered != nil && buffered.seq == next {
					out <- buffered
					next++
					buffer[i] = nil
					sent = true
				}
			}
		}
	}

	cases := make([]reflect.SelectCase, 0, len(jobOutQueues))
	caseToQueue := make([]int, 0, len(jobOutQueues))
	for {
		cases, caseToQueue = cases[:0], caseToQueue[:0]
		for i, q := range jobOutQueues {
			if buffer[i] == nil && !closed[i] {
				cases = append(cases, reflect.SelectCase{
					Dir:  reflect.SelectRecv,
					Chan: reflect.ValueOf(q),
				})
				caseToQueue = append(caseToQueue, i)
			}
		}
		if len(cases) == 0 {
			flush()
			close(out)
			return
		}

		chosen, recv, ok := reflect.Select(cases)
		i := caseToQueue[chosen]
		if !ok {
			closed[i] = true
			continue
		}
		buffer[i] = recv.Interface().(*job)
		flush()
	}
}
