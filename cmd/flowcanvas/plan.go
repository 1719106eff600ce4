package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"flowcanvas/internal/ctxlog"
	"flowcanvas/internal/execution"
	"flowcanvas/internal/service"
)

func newPlanCmd(a *app) *cobra.Command {
	var (
		format string
		submit bool
	)

	cmd := &cobra.Command{
		Use:   "plan FILE",
		Short: "Print the execution request for a workflow file",
		Long: `Loads a workflow document (JSON or YAML) into an empty workflow and prints
the logical plan that would be sent to the execution backend. With --submit
the plan is sent to execution.endpoint and the backend's reply is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxlog.WithLogger(cmd.Context(), a.logger)
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(args[0]), ".")
			}

			cat, err := loadCatalog(ctx, a.cfg.Catalog, a.logger)
			if err != nil {
				return err
			}
			svc := service.NewWorkflowService(service.Options{Catalog: cat, Logger: a.logger})
			defer svc.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			if _, err := svc.Import(ctx, f, format); err != nil {
				return err
			}

			out := json.NewEncoder(cmd.OutOrStdout())
			out.SetIndent("", "  ")
			plan := svc.Plan()
			if !submit {
				return out.Encode(plan)
			}

			if !a.cfg.ExecutionEnabled() {
				return errors.New("--submit needs execution.endpoint in the config")
			}
			client := execution.NewClient(a.cfg.Execution.Endpoint, a.cfg.Execution.Timeout.Duration())
			resp, err := client.Submit(ctx, plan)
			if resp.Body != nil {
				if encErr := out.Encode(resp.Body); encErr != nil {
					return encErr
				}
			}
			if err != nil {
				return fmt.Errorf("submit plan: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "document format: json or yaml (default: from file extension)")
	cmd.Flags().BoolVar(&submit, "submit", false, "send the plan to the execution backend")
	return cmd
}
