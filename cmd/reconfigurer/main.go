package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillcoder/reconfigurer/internal/app"
	"github.com/skillcoder/reconfigurer/internal/infra/shutdown"
	"github.com/skillcoder/reconfigurer/internal/logic/reconfig"
)

var signals <-chan os.Signal

var (
	cfgPath        string
	dryRun         bool
	service        string
	mode           string
	replicas       int32
	cpuRequests    int64
	memoryRequests int64
	cpuLimits      int64
	memoryLimits   int64
	backupID       string
)

var rootCmd = &cobra.Command{
	Use:           "reconfigurer",
	Short:         "Mode-driven resource reconfiguration engine for a fixed fleet of services",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Patch service manifests for the requested mode and apply them",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Restore a snapshot and apply it as-is",
	Args:  cobra.NoArgs,
	RunE:  runRollback,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the engine over HTTP for an upstream control loop",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to the config file (default ./reconfigurer.yaml)")

	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the patch without writing backups or applying")
	runCmd.Flags().StringVar(&service, "service", "", "Restrict the run to one registered service")
	runCmd.Flags().StringVar(&mode, "mode", "", "Operating mode: warning, unhealthy, or anything else for normal")
	runCmd.Flags().Int32Var(&replicas, "replicas", 1, "Target replica count")
	runCmd.Flags().Int64Var(&cpuRequests, "cpu-requests", 0, "CPU requests in milli-cpu")
	runCmd.Flags().Int64Var(&memoryRequests, "memory-requests", 0, "Memory requests in Mi")
	runCmd.Flags().Int64Var(&cpuLimits, "cpu-limits", 0, "CPU limits in milli-cpu")
	runCmd.Flags().Int64Var(&memoryLimits, "memory-limits", 0, "Memory limits in Mi")

	rollbackCmd.Flags().StringVar(&backupID, "backup", "", "Snapshot id to restore (e.g. authservice_20240101_000000)")
	_ = rollbackCmd.MarkFlagRequired("backup")

	rootCmd.AddCommand(runCmd, rollbackCmd, serveCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	application, err := app.New(cfgPath)
	if err != nil {
		return err
	}

	report, err := application.Run(cmd.Context(), reconfig.PatchRequest{
		Service:          service,
		Mode:             reconfig.Mode(mode),
		Replicas:         replicas,
		CPURequestsMilli: cpuRequests,
		MemoryRequestsMi: memoryRequests,
		CPULimitsMilli:   cpuLimits,
		MemoryLimitsMi:   memoryLimits,
		DryRun:           dryRun,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	fmt.Println(string(out))

	return nil
}

func runRollback(cmd *cobra.Command, _ []string) error {
	application, err := app.New(cfgPath)
	if err != nil {
		return err
	}

	return application.Rollback(cmd.Context(), backupID)
}

func runServe(cmd *cobra.Command, _ []string) error {
	application, err := app.New(cfgPath)
	if err != nil {
		return err
	}

	return application.Serve(cmd.Context(), signals)
}

func main() {
	// Start listening for signals immediately, before any other initialization.
	signals = shutdown.Notify()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("failed to run", "reason", err)
		os.Exit(1)
	}
}
