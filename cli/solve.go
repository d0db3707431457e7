package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"midiwarp/config"
	"midiwarp/sequencer"
	"midiwarp/solver"
)

// solverOpts holds the solver flags. Unset flags fall back to the config.
type solverOpts struct {
	mode         string
	loops        float64
	loopScale    float64
	totalScale   float64
	finalScale   float64
	integerLoops bool
}

func addSolverFlags(fs *pflag.FlagSet, opts *solverOpts) {
	fs.StringVarP(&opts.mode, "mode", "m", "", fmt.Sprintf("solver mode: %v", solver.ModeNames()))
	fs.Float64VarP(&opts.loops, "loops", "n", 0, "repetitions, in loops of the source pattern")
	fs.Float64VarP(&opts.loopScale, "loop-scale", "s", 0, "per-loop scale (>1 slows down, <1 speeds up)")
	fs.Float64VarP(&opts.totalScale, "total-scale", "r", 0, "output duration / source duration")
	fs.Float64VarP(&opts.finalScale, "final-scale", "e", 0, "last step relative to the first")
	fs.BoolVar(&opts.integerLoops, "integer-loops", false, "round repetitions to whole loops")
}

// resolve merges explicitly set flags over the config's solver section.
func (o *solverOpts) resolve(fs *pflag.FlagSet, cfg config.SolverConfig) (solver.Mode, config.SolverConfig, error) {
	if fs.Changed("mode") {
		cfg.Mode = o.mode
	}
	if fs.Changed("loops") {
		cfg.Loops = o.loops
	}
	if fs.Changed("loop-scale") {
		cfg.LoopScale = o.loopScale
	}
	if fs.Changed("total-scale") {
		cfg.TotalScale = o.totalScale
	}
	if fs.Changed("final-scale") {
		cfg.FinalScale = o.finalScale
	}
	if fs.Changed("integer-loops") {
		cfg.IntegerLoops = o.integerLoops
	}
	mode, err := solver.ParseMode(cfg.Mode)
	if err != nil {
		return 0, cfg, err
	}
	return mode, cfg, nil
}

// runSolver resolves the flags and solves against e. A failed solve is
// returned as an error.
func (c *CLI) runSolver(cmd *cobra.Command, e *sequencer.Engine, opts *solverOpts) (solver.Result, error) {
	mode, sc, err := opts.resolve(cmd.Flags(), c.Config.Solver)
	if err != nil {
		return solver.Result{}, err
	}
	res := e.RunSolver(mode, sc.Loops, sc.LoopScale, sc.TotalScale, sc.FinalScale, sc.IntegerLoops)
	if !res.Success {
		return res, fmt.Errorf("%s: %s", mode, res.Message)
	}
	return res, nil
}

func (c *CLI) solveCommand() *cobra.Command {
	var opts solverOpts

	cmd := &cobra.Command{
		Use:   "solve [file]",
		Short: "Solve stretch parameters without rendering",
		Long: `Solve derives the unlocked parameters of the chosen mode and reports the
quantization drift. Without a file the pattern is a single 960-tick segment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := c.newEngine()
			if len(args) == 1 {
				if err := e.LoadSource(args[0]); err != nil {
					return err
				}
			}
			res, err := c.runSolver(cmd, e, &opts)
			if err != nil {
				return err
			}
			printResult(cmd, res)
			return nil
		},
	}
	addSolverFlags(cmd.Flags(), &opts)
	return cmd
}

func printResult(cmd *cobra.Command, res solver.Result) {
	w := cmd.OutOrStdout()
	printTitle(w, res.Mode.String())
	printKeyValue(w, "repetitions", fmt.Sprintf("%d (%d/%d = %.2f loops)", res.Repetitions, res.Repetitions, res.Segments, res.Loops()))
	printKeyValue(w, "loop scale", fmt.Sprintf("%.5f", res.LoopScale))
	printKeyValue(w, "step scale", fmt.Sprintf("%.6f", res.StepScale))
	printKeyValue(w, "total scale", fmt.Sprintf("%.5f", res.TotalScale))
	printKeyValue(w, "final scale", fmt.Sprintf("%.5f", res.FinalScale))
	if res.Mode.IsLocked(solver.ParamTotalScale) && res.FitError > 0 {
		printKeyValue(w, "fit error", fmt.Sprintf("%.5f", res.FitError))
	}
	printKeyValue(w, "realized", fmt.Sprintf("%.5f", res.RealizedScale))
	drift := fmt.Sprintf("%.2f ticks, %.2f ms", res.ErrorTicks, res.ErrorMs)
	printKeyValue(w, "drift", drift)
	if res.ErrorMs >= 30 {
		printWarning(w, "drift above 30ms; the output will audibly wander")
	}
}
