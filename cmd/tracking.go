package cmd

import (
	"io"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/edxdk/tracking"
	"github.com/spf13/cobra"
)

// TrackingMain is wrapped by NewTrackingCommand and only exported for testing
// purposes.
var TrackingMain *tracking.Main

// NewTrackingCommand returns a new cobra command wrapping TrackingMain.
func NewTrackingCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	TrackingMain = tracking.NewMain()
	trackingCommand := &cobra.Command{
		Use:   "tracking",
		Short: "extract the tracking logs of a set of courses",
		Long: `Copy the tracking log events of the courses named in a course
selection file, between enrollment and completion dates, into their
own collection. Events are read from a database collection, log files,
S3 or Kafka. Events already extracted are skipped, so a window can be
extracted again safely.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, stats, done, err := observability(stderr, "tracking")
			if err != nil {
				return err
			}
			defer done()
			TrackingMain.SetObservability(log, stats)
			start := time.Now()
			err = TrackingMain.Run()
			if err != nil {
				return err
			}
			log.Printf("done in %v", time.Since(start))
			return nil
		},
	}
	flags := trackingCommand.Flags()
	err = commandeer.Flags(flags, TrackingMain)
	if err != nil {
		panic(err)
	}
	return trackingCommand
}

func init() {
	subcommandFns["tracking"] = NewTrackingCommand
}
