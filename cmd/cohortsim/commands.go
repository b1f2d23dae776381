package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-cohort/internal/enrollment"
	"github.com/p-n-ai/pai-cohort/internal/grouping"
	"github.com/p-n-ai/pai-cohort/internal/platform/config"
	"github.com/p-n-ai/pai-cohort/internal/report"
	"github.com/p-n-ai/pai-cohort/internal/simulation"
)

// simFlags registers the run-shape flags shared by run and groups.
func simFlags(cmd *cobra.Command, cfg *config.Config, overrides *[]string) {
	cmd.Flags().Uint64Var(&cfg.Simulation.Seed, "seed", cfg.Simulation.Seed, "random seed")
	cmd.Flags().IntVar(&cfg.Simulation.Years, "years", cfg.Simulation.Years, "years to simulate")
	cmd.Flags().IntVar(&cfg.Simulation.EnrollingYears, "enrolling-years", cfg.Simulation.EnrollingYears, "years that admit a new cohort")
	cmd.Flags().BoolVar(&cfg.Simulation.Progress, "progress", cfg.Simulation.Progress, "show a progress bar")
	cmd.Flags().StringArrayVar(overrides, "set", nil, "override a parameter, e.g. --set honors=0.2 (repeatable)")
}

func runCmd(cfg *config.Config) *cobra.Command {
	var (
		overrides    []string
		showStudents int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation and print the summary",
		Long: `Run enrolls a cohort each enrolling year, advances every active student
once per year and prints the graduation summary. With --report the run is
also saved as an XLSX workbook.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, res, err := simulate(cmd.Context(), cfg, overrides, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := report.Summary(out, res); err != nil {
				return err
			}
			for i, s := range res.Graduates {
				if i >= showStudents {
					break
				}
				fmt.Fprintln(out)
				if err := report.Student(out, engine.Catalog(), s); err != nil {
					return err
				}
			}

			if cfg.Report.Path != "" {
				return report.WriteWorkbook(cfg.Report.Path, engine.Catalog(), res)
			}
			return nil
		},
	}
	simFlags(cmd, cfg, &overrides)
	cmd.Flags().StringVar(&cfg.Report.Path, "report", cfg.Report.Path, "write the run to this .xlsx workbook")
	cmd.Flags().IntVar(&showStudents, "show-students", 0, "print the records of the first N graduates")
	return cmd
}

func catalogCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the course catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}
			return report.Catalog(cmd.OutOrStdout(), cat)
		},
	}
}

func groupsCmd(cfg *config.Config) *cobra.Command {
	var (
		overrides []string
		ignore    []string
	)
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Group the final year's schedules into independent blocks",
		Long: `Groups runs a simulation, then partitions the courses the remaining
students are enrolled in so that no student's schedule spans two groups.
Courses named by --ignore (school-wide specials by default) do not link
groups together.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events := simulation.NewMemoryEventLogger()
			_, res, err := simulate(cmd.Context(), cfg, overrides, events)
			if err != nil {
				return err
			}

			skip := grouping.IgnoreSet(ignore...)
			groups := grouping.Partition(res.Active, skip)
			if err := grouping.Verify(res.Active, groups, skip); err != nil {
				return err
			}
			slog.Info("schedules grouped", "students", len(res.Active), "groups", len(groups), "placements", events.Count(simulation.EventPlacementCredit))
			return report.Groups(cmd.OutOrStdout(), groups)
		},
	}
	simFlags(cmd, cfg, &overrides)
	cmd.Flags().StringSliceVar(&ignore, "ignore", []string{"PE", "Band"}, "course names that do not link groups")
	return cmd
}

func paramsCmd(cfg *config.Config) *cobra.Command {
	var overrides []string
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the effective simulation parameters as YAML",
		Long: `Params prints the parameters a run would use: the built-in defaults,
then the --params file, then each --set override. Valid names are:
  ` + strings.Join(enrollment.ParamNames(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadParams(cfg.ParamsPath, overrides)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(p); err != nil {
				return fmt.Errorf("encoding params: %w", err)
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "override a parameter, e.g. --set honors=0.2 (repeatable)")
	return cmd
}
