package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/fetchd/internal/config"
	"github.com/fyrsmithlabs/fetchd/internal/logging"
	"github.com/fyrsmithlabs/fetchd/internal/plugins"
	"github.com/fyrsmithlabs/fetchd/internal/plugins/seen"
	"github.com/fyrsmithlabs/fetchd/internal/task"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration without executing tasks",
	Long: `Check validates every configured task against the registered plugins and
reports pass/fail per task. No phase executes and no state is touched.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Validation never touches the seen store; an in-memory database keeps
	// check side-effect free.
	store, err := seen.OpenStore(":memory:")
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := plugins.NewRegistry(store)
	if err != nil {
		return err
	}

	failed := 0
	for _, name := range taskNames(cfg) {
		t := task.New(name, cfg.Tasks[name], registry, task.Options{CheckOnly: true})
		t.SetLogger(logger)

		errs := t.Validate(cmd.Context())
		if len(errs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Task '%s' passed\n", name)
			continue
		}
		failed++
		fmt.Fprintf(cmd.OutOrStdout(), "Task '%s' failed:\n", name)
		for _, msg := range errs {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", msg)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d task(s) failed validation", failed)
	}
	return nil
}
