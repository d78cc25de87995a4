package cmd

import (
	"fmt"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xdruid77/pagescope/api/schemas"
	"github.com/xdruid77/pagescope/internal/browser/session"
	"github.com/xdruid77/pagescope/internal/engine"
	"github.com/xdruid77/pagescope/internal/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newAnalyzeCmd creates the `analyze` command: snapshot one or more URLs and
// emit the results as JSON.
func newAnalyzeCmd() *cobra.Command {
	var (
		output      string
		pretty      bool
		concurrency int
		perSecond   float64
	)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [urls...]",
		Short: "Extract page snapshots for the given URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			browser := session.NewEngine(appConfig.Browser(), logger)
			defer browser.Close()

			analyzer := engine.NewAnalyzer(browser, logger, appConfig.Analyzer().SummaryMaxBytes)

			if concurrency < 1 {
				concurrency = 1
			}
			limiter := rate.NewLimiter(rate.Limit(perSecond), 1)
			if perSecond <= 0 {
				limiter = rate.NewLimiter(rate.Inf, 1)
			}

			// Snapshots come back in argument order regardless of which
			// finishes first.
			snapshots := make([]*schemas.PageSnapshot, len(args))
			var mu sync.Mutex

			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for i, url := range args {
				g.Go(func() error {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
					snap, err := analyzer.Analyze(gctx, url)
					if err != nil {
						logger.Error("Analysis failed.", zap.String("url", url), zap.Error(err))
						return err
					}
					mu.Lock()
					snapshots[i] = snap
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			return writeSnapshots(snapshots, output, pretty)
		},
	}

	analyzeCmd.Flags().StringVarP(&output, "output", "o", "", "Write JSON output to this file instead of stdout")
	analyzeCmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	analyzeCmd.Flags().IntVarP(&concurrency, "concurrency", "j", 2, "Number of pages analyzed concurrently")
	analyzeCmd.Flags().Float64Var(&perSecond, "rate", 0, "Page loads per second (0 = unlimited)")

	return analyzeCmd
}

func writeSnapshots(snapshots []*schemas.PageSnapshot, output string, pretty bool) error {
	var payload interface{} = snapshots
	if len(snapshots) == 1 {
		payload = snapshots[0]
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(payload, "", "  ")
	} else {
		data, err = json.Marshal(payload)
	}
	if err != nil {
		return fmt.Errorf("encode snapshots: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}
