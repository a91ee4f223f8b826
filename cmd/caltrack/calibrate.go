package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/caltrack/caltrack/pkg/calibration"
	"github.com/caltrack/caltrack/pkg/catalog"
	"github.com/caltrack/caltrack/pkg/session"
)

func NewCalibrateCommand() *cobra.Command {
	var nomina string

	cmd := &cobra.Command{
		Use:     "calibrate <tool-id>",
		Aliases: []string{"cal"},
		Short:   "Record a calibration for a tool",
		GroupID: gBasic,
		Long: `Record a calibration for a tool.

The tool's verification dimensions and tolerance windows are resolved from
the equipment catalog. You enter one measured value per dimension; values
outside tolerance mark the record NO OK and require an explicit
confirmation before anything is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			toolID := args[0]
			ctx := c.Context()
			in := bufio.NewReader(os.Stdin)

			resolver := catalog.NewResolver(apiClient, nil)
			spec, err := resolver.Resolve(ctx, toolID)
			if err != nil {
				return fmt.Errorf("failed to resolve tool %s: %w", toolID, err)
			}

			// Early calibrations are allowed; this is advisory only.
			if next, ok, err := apiClient.NextCalibrationOf(ctx, toolID); err == nil && ok && next.After(time.Now()) {
				color.Yellow("Calibración programada para %s.", next.Format(string(calibration.LayoutFullDate)))
				yes, err := promptYesNo(in, "Continue anyway?")
				if err != nil {
					return err
				}
				if !yes {
					fmt.Println("Aborted. Nothing was saved.")
					return nil
				}
			}

			if nomina == "" {
				nomina, err = promptLine(in, "Nómina: ")
				if err != nil {
					return err
				}
			}

			sess := session.New(spec, nomina, apiClient)
			windows := spec.ToleranceWindows()
			for i, w := range windows {
				raw, err := promptLine(in, fmt.Sprintf("Dimensión %d [%g, %g]: ", i+1, w.Min, w.Max))
				if err != nil {
					return err
				}
				sess.SetEntry(i, raw)
			}

			comments, err := promptLine(in, "Comentarios (optional): ")
			if err != nil {
				return err
			}
			sess.SetComments(comments)

			outcome, err := sess.Submit(ctx)
			if err != nil {
				if pkgerrors.Is(err, session.ErrIncomplete) {
					return fmt.Errorf("all dimension fields must be filled")
				}
				return err
			}

			if outcome.State == session.StateConfirming {
				printViolations(sess, outcome.Decision)
				yes, err := promptYesNo(in, "Save as NO OK anyway?")
				if err != nil {
					return err
				}
				if !yes {
					if err := sess.Decline(); err != nil {
						return err
					}
					fmt.Println("Not saved. Entered values were kept for review.")
					return nil
				}
				outcome, err = sess.Confirm(ctx)
				if err != nil {
					return err
				}
			}

			rec := outcome.Record
			if rec.Estatus == calibration.StatusOK {
				color.Green("Saved: %s is OK. Next calibration: %s.", toolID, rec.SiguienteCalibracion)
			} else {
				color.Red("Saved: %s is NO OK. Next calibration: %s.", toolID, rec.SiguienteCalibracion)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&nomina, "nomina", "", "operator payroll number (prompted if not given)")

	return cmd
}

func printViolations(sess *session.Session, decision calibration.Decision) {
	entries := sess.Entries()
	color.Red("Out-of-tolerance measurements:")
	windows := sess.Spec().ToleranceWindows()
	for _, idx := range decision.ViolatingIndices {
		fmt.Printf("  Dimensión %d: %s (allowed [%g, %g])\n",
			idx+1, entries[idx], windows[idx].Min, windows[idx].Max)
	}
}

func promptLine(in *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptYesNo(in *bufio.Reader, prompt string) (bool, error) {
	ans, err := promptLine(in, prompt+" (y/N): ")
	if err != nil {
		return false, err
	}
	ans = strings.ToLower(ans)
	return ans == "y" || ans == "yes", nil
}
