package cli

import (
	"github.com/spf13/cobra"
)

type renderOpts struct {
	output string
	dump   bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var (
		solve solverOpts
		opts  renderOpts
	)

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Solve, generate and write the warped MIDI file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("dump") {
				opts.dump = c.Config.Output.DebugDump
			}
			return c.runRender(cmd, args[0], &solve, &opts)
		},
	}

	addSolverFlags(cmd.Flags(), &solve)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <source><suffix>.mid)")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "also write a .txt debug dump next to the output")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, source string, solve *solverOpts, opts *renderOpts) error {
	e, err := c.loadEngine(source)
	if err != nil {
		return err
	}
	res, err := c.runSolver(cmd, e, solve)
	if err != nil {
		return err
	}
	if err := e.GenerateOutput(res.Repetitions, res.StepScale); err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = c.Config.OutputPath(source)
	}
	if err := e.SaveFile(out); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printSuccess(w, "Rendered %d steps (%.2f loops), drift %.2fms", res.Repetitions, res.Loops(), res.ErrorMs)
	printFile(w, out)
	if opts.dump {
		path, err := e.SaveDebugDump(out)
		if err != nil {
			return err
		}
		printFile(w, path)
	}
	return nil
}
