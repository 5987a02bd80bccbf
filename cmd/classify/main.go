// Command classify runs image files through the classification pipeline from
// the command line, asking an API server first and falling back to the local
// simulated classifier when the server cannot answer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/recycling-guide-go/internal/catalog"
	"github.com/anime-shed/recycling-guide-go/internal/classifier"
	"github.com/anime-shed/recycling-guide-go/internal/logger"
	"github.com/anime-shed/recycling-guide-go/internal/remote"
	"github.com/anime-shed/recycling-guide-go/internal/session"
	"github.com/anime-shed/recycling-guide-go/internal/worker"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
	"github.com/anime-shed/recycling-guide-go/pkg/validation"
)

type options struct {
	server  string
	timeout time.Duration
	latency time.Duration
	choose  string
	workers int
	files   []string
}

// outcome is the JSON line printed for every input file
type outcome struct {
	File   string                       `json:"file"`
	State  string                       `json:"state"`
	Result *models.ClassificationResult `json:"result,omitempty"`
	Error  string                       `json:"error,omitempty"`
}

var errUsage = errors.New("usage: classify [flags] image...")

func main() {
	logger.Logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed, err := run(ctx, os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.StringVar(&opts.server, "server", "", "analyze endpoint of a running API server (empty: local only)")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout for each remote call")
	fs.DurationVar(&opts.latency, "latency", classifier.DefaultLatency, "latency of the local simulated classifier")
	fs.StringVar(&opts.choose, "choose", "", "alternative id to promote when it is offered")
	fs.IntVar(&opts.workers, "workers", 0, "files classified concurrently (0: one per CPU)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.files = fs.Args()
	if len(opts.files) == 0 {
		return opts, errUsage
	}
	if opts.timeout <= 0 || opts.latency < 0 {
		return opts, fmt.Errorf("timeout must be > 0 and latency >= 0")
	}
	if opts.server != "" {
		if err := validation.DefaultEndpointPolicy().Validate(opts.server); err != nil {
			return opts, fmt.Errorf("invalid -server: %w", err)
		}
	}
	return opts, nil
}

func newClassifier(opts options) classifier.Classifier {
	local := classifier.NewSimulatedClassifier(classifier.DefaultOptions().WithLatency(opts.latency))

	var remoteClassifier classifier.Classifier
	if opts.server != "" {
		remoteClassifier = remote.NewClient(opts.server, opts.timeout, remote.DefaultBreakerSettings()).
			WithCatalog(catalog.GetAll())
	}
	return classifier.NewFallbackClassifier(remoteClassifier, local, opts.timeout, nil)
}

// run classifies every file and writes one JSON object per file in argument
// order. It returns how many files ended without a result.
func run(ctx context.Context, args []string, out io.Writer) (int, error) {
	opts, err := parseFlags(args)
	if err != nil {
		return 0, err
	}
	c := newClassifier(opts)

	sessions := make([]*session.Session, len(opts.files))
	outcomes := make([]outcome, len(opts.files))
	for i := range sessions {
		sessions[i] = session.New()
	}

	// An interrupt abandons whatever is still being analyzed
	stopWatch := make(chan struct{})
	var watch sync.WaitGroup
	watch.Add(1)
	go func() {
		defer watch.Done()
		select {
		case <-ctx.Done():
			for _, s := range sessions {
				s.Reset()
			}
		case <-stopWatch:
		}
	}()

	pool := worker.NewPool(opts.workers)
	pool.Start()
	for i, file := range opts.files {
		pool.Submit(func() {
			outcomes[i] = classifyFile(ctx, c, sessions[i], file, opts.choose)
		})
	}
	pool.Wait()
	pool.Close()

	close(stopWatch)
	watch.Wait()

	failed := 0
	enc := json.NewEncoder(out)
	for _, o := range outcomes {
		if o.Result == nil {
			failed++
		}
		if err := enc.Encode(o); err != nil {
			return failed, fmt.Errorf("failed to write result: %w", err)
		}
	}

	stats := pool.GetStats()
	logger.WithFields(logrus.Fields{
		"files":     len(opts.files),
		"completed": stats.CompletedJobs,
		"failed":    failed,
	}).Debug("Classification run finished")
	return failed, nil
}

func classifyFile(ctx context.Context, c classifier.Classifier, s *session.Session, file, choose string) outcome {
	o := outcome{File: file}

	data, err := os.ReadFile(file)
	if err != nil {
		o.State = session.Error.String()
		o.Error = err.Error()
		return o
	}
	image, err := validation.EncodeDataURL(data)
	if err != nil {
		o.State = session.Error.String()
		o.Error = err.Error()
		return o
	}

	if err := s.SubmitImage(image); err != nil {
		o.State = s.State().String()
		o.Error = err.Error()
		return o
	}
	if _, err := s.Run(ctx, c); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("file", file).Warn("Classification failed")
	}

	if choose != "" && s.State() == session.Result {
		if err := s.SelectAlternative(choose); err != nil {
			logger.WithContext(ctx).WithField("file", file).WithField("alternative", choose).
				Debug("Requested alternative not offered")
		}
	}

	snap := s.Snapshot()
	o.State = snap.Status
	o.Result = snap.Result
	o.Error = snap.Error
	if snap.State == session.Idle {
		o.Error = "interrupted"
	}
	return o
}
