package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xdruid77/pagescope/api/schemas"
	"github.com/xdruid77/pagescope/internal/browser/session"
	"github.com/xdruid77/pagescope/internal/engine"
	"github.com/xdruid77/pagescope/internal/observability"
)

// newResolveCmd creates the `resolve` command: analyze a URL and match a
// free-text element description against the snapshot.
func newResolveCmd() *cobra.Command {
	var (
		target string
		action string
		pretty bool
	)

	resolveCmd := &cobra.Command{
		Use:   "resolve [url]",
		Short: "Resolve an element description to a selector on the given page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			url := args[0]

			browser := session.NewEngine(appConfig.Browser(), logger)
			defer browser.Close()

			analyzer := engine.NewAnalyzer(browser, logger, appConfig.Analyzer().SummaryMaxBytes)

			result, err := analyzer.Resolve(ctx, url, target, schemas.ParseAction(action))
			if err != nil {
				return err
			}
			if !result.Matched {
				logger.Info("No element matched the description.",
					zap.String("url", url),
					zap.String("target", target))
			}

			var data []byte
			if pretty {
				data, err = json.MarshalIndent(result, "", "  ")
			} else {
				data, err = json.Marshal(result)
			}
			if err != nil {
				return fmt.Errorf("encode match result: %w", err)
			}
			data = append(data, '\n')
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	resolveCmd.Flags().StringVarP(&target, "target", "t", "", "Free-text description of the element to resolve")
	resolveCmd.Flags().StringVarP(&action, "action", "a", "other", "Intended action (click, type, select)")
	resolveCmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	_ = resolveCmd.MarkFlagRequired("target")

	return resolveCmd
}
