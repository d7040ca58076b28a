package commands

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/limitup/internal/api/ws"
	"github.com/wonny/limitup/internal/scheduler"
	"github.com/wonny/limitup/internal/scheduler/jobs"
	"github.com/wonny/limitup/internal/universe"
)

// schedulerCmd manages the job scheduler.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Start the scheduler daemon or inspect its jobs.

Registered jobs:
  classify_snapshots - nightly snapshot rebuild per configured market
  universe_refresh   - weekly symbol-table refresh from exchange listings

Example:
  go run ./cmd/limitup scheduler start
  go run ./cmd/limitup scheduler run classify_snapshots`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	RunE:  runScheduler,
}

var schedulerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered jobs and their schedules",
	RunE:  listSchedulerJobs,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "Run one job immediately and wait for the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerJob,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func buildScheduler(app *app) (*scheduler.Scheduler, *ws.Hub, error) {
	sched := scheduler.New(app.log)
	hub := ws.NewHub(app.log)

	classifyJob := jobs.NewClassifyJob(app.runner, hub, app.cfg.Engine.Markets, app.cfg.Engine.ClassifySchedule, app.log)
	if err := sched.AddJob(classifyJob); err != nil {
		return nil, nil, err
	}

	refresher := universe.NewRefresher(
		app.fetchClient(),
		app.symbols,
		app.cfg.Universe.RequestsPerSecond,
		app.log,
	)
	universeJob := jobs.NewUniverseJob(refresher, []jobs.UniverseSource{
		{Market: "TW", URL: app.cfg.Universe.ISINListURL},
	}, app.log)
	if err := sched.AddJob(universeJob); err != nil {
		return nil, nil, err
	}

	return sched, hub, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	app, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	sched, hub, err := buildScheduler(app)
	if err != nil {
		return err
	}
	defer hub.Close()

	sched.Start()
	defer sched.Stop()

	fmt.Println("Scheduler running. Ctrl+C to stop.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return nil
}

func listSchedulerJobs(cmd *cobra.Command, args []string) error {
	app, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	sched, hub, err := buildScheduler(app)
	if err != nil {
		return err
	}
	defer hub.Close()

	names := sched.JobNames()
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	app, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	sched, hub, err := buildScheduler(app)
	if err != nil {
		return err
	}
	defer hub.Close()

	jobName := args[0]
	if err := sched.RunJob(jobName); err != nil {
		return err
	}

	fmt.Printf("Running %s...\n", jobName)
	result, err := waitForJobResult(sched, jobName)
	if err != nil {
		return err
	}

	if result.Success {
		fmt.Printf("Job %s finished in %s\n", jobName, result.Duration.Round(time.Millisecond))
		return nil
	}
	return fmt.Errorf("job %s failed: %s", jobName, result.Error)
}

// waitForJobResult polls the scheduler history until the triggered run
// lands. RunJob is asynchronous, so the CLI has to wait for the record.
func waitForJobResult(sched *scheduler.Scheduler, name string) (scheduler.JobResult, error) {
	for {
		result, ok, err := sched.LatestResult(name)
		if err != nil {
			return scheduler.JobResult{}, err
		}
		if ok {
			return result, nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}
