package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/splitter"
)

func newValidateCmd(global *globalOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate experiment definitions",
		Long: `Validate checks every experiment in a definitions file against the
engine rules: variant weights, control variant, traffic allocation,
configuration ranges and segmentation criteria.

Examples:
  splitter validate -f experiments.yaml
  splitter validate -f experiments.yaml -c engine.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, global, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Experiments file (YAML)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runValidate(cmd *cobra.Command, global *globalOptions, file string) error {
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}

	defs, err := loadDefinitions(file)
	if err != nil {
		return err
	}

	engine, err := splitter.NewEngine(&cfg, splitter.WithLogger(splitter.NewNopLogger()))
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close(cmd.Context()) }()

	out := cmd.OutOrStdout()
	var errs []error
	for i, def := range defs {
		label := def.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}

		exp, err := engine.CreateExperiment(cmd.Context(), def)
		if err != nil {
			_, _ = fmt.Fprintf(out, "FAIL  %s: %v\n", label, err)
			errs = append(errs, fmt.Errorf("%s: %w", label, err))

			continue
		}
		_, _ = fmt.Fprintf(out, "ok    %s (%d variants, traffic %.2f)\n", exp.ID, len(exp.Variants), exp.TrafficAllocation)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d experiments invalid: %w", len(errs), len(defs), errors.Join(errs...))
	}

	return nil
}
