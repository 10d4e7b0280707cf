package cmd

import (
	"io"
	"time"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/edxdk/structure"
	"github.com/spf13/cobra"
)

// StructureMain is wrapped by NewStructureCommand and only exported for
// testing purposes.
var StructureMain *structure.Main

// NewStructureCommand returns a new cobra command wrapping StructureMain.
func NewStructureCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	StructureMain = structure.NewMain()
	structureCommand := &cobra.Command{
		Use:   "structure <database> <collection> <json_file>",
		Short: "import a course structure export into a collection",
		Long: `Import a course structure export (the *-course_structure-*.json
file of an edX research data package) into a collection of blocks.
Conditional and wrapper blocks are collapsed into their parents and
every block is annotated with the ids, display names and positions
of its chapter, sequential and vertical ancestors.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, stats, done, err := observability(stderr, "structure")
			if err != nil {
				return err
			}
			defer done()
			StructureMain.SetObservability(log, stats)
			start := time.Now()
			err = StructureMain.Run(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			log.Printf("done in %v", time.Since(start))
			return nil
		},
	}
	flags := structureCommand.Flags()
	err = commandeer.Flags(flags, StructureMain)
	if err != nil {
		panic(err)
	}
	return structureCommand
}

func init() {
	subcommandFns["structure"] = NewStructureCommand
}
