package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// NewExecutionCmd создаёт группу команд для работы с выполнениями.
func NewExecutionCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "execution",
		Aliases: []string{"exec"},
		Short:   "Run flows and inspect executions",
	}

	cmd.AddCommand(
		newExecutionListCmd(clientFn, outputFn),
		newExecutionStartCmd(clientFn, outputFn),
		newExecutionShowCmd(clientFn, outputFn),
		newExecutionTasksCmd(clientFn, outputFn),
	)

	return cmd
}

var executionHeaders = []string{"ID", "FLOW", "STATUS", "TASKS", "STARTED", "COMPLETED"}

// executionRow — табличная строка для выполнения.
func executionRow(e ExecutionResponse) []string {
	return []string{
		e.ID,
		e.FlowID,
		e.Status,
		strconv.Itoa(e.TotalTasksExecuted),
		stamp(e.StartedAt),
		stamp(e.CompletedAt),
	}
}

var taskExecutionHeaders = []string{"SEQ", "TASK", "STATUS", "DURATION", "ERROR"}

// taskExecutionRow — табличная строка для записи о задаче.
func taskExecutionRow(t TaskExecutionResponse) []string {
	duration := ""
	if t.DurationSeconds != nil {
		duration = fmt.Sprintf("%.3fs", *t.DurationSeconds)
	}
	return []string{
		strconv.Itoa(t.SequenceNumber),
		t.TaskName,
		t.Status,
		duration,
		t.ErrorMessage,
	}
}

func newExecutionListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var flowID, status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List executions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			execs, err := client.ListExecutions(ListExecutionsOpts{
				FlowID: flowID,
				Status: status,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, len(execs))
			for i, e := range execs {
				rows[i] = executionRow(e)
			}

			out.Print(executionHeaders, rows, execs)
			return nil
		},
	}

	cmd.Flags().StringVar(&flowID, "flow-id", "", "Filter by flow ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending/running/completed/failure)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of executions")

	return cmd
}

func newExecutionStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var inputJSON string
	var inputFile string

	cmd := &cobra.Command{
		Use:   "start FLOW_ID",
		Short: "Execute a flow and wait for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := ExecuteFlowRequest{}

			raw := []byte(inputJSON)
			if inputFile != "" {
				data, err := os.ReadFile(inputFile)
				if err != nil {
					return fmt.Errorf("failed to read input file: %w", err)
				}
				raw = data
			}
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &req.InputContext); err != nil {
					return fmt.Errorf("invalid input context: %w", err)
				}
			}

			exec, err := client.ExecuteFlow(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Execution %s finished: %s", exec.ID, exec.Status))
			out.Print(executionHeaders, [][]string{executionRow(*exec)}, exec)

			if len(exec.TaskExecutions) > 0 && !out.jsonMode {
				rows := make([][]string, len(exec.TaskExecutions))
				for i, t := range exec.TaskExecutions {
					rows[i] = taskExecutionRow(t)
				}
				out.Table(taskExecutionHeaders, rows)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputJSON, "input", "", "Input context as inline JSON")
	cmd.Flags().StringVar(&inputFile, "input-file", "", "Path to input context JSON file")

	return cmd
}

func newExecutionShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var withTasks bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show execution details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			exec, err := client.GetExecution(args[0], withTasks)
			if err != nil {
				return err
			}

			out.Print(executionHeaders, [][]string{executionRow(*exec)}, exec)

			if withTasks && !out.jsonMode {
				rows := make([][]string, len(exec.TaskExecutions))
				for i, t := range exec.TaskExecutions {
					rows[i] = taskExecutionRow(t)
				}
				out.Table(taskExecutionHeaders, rows)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withTasks, "tasks", false, "Include task execution records")

	return cmd
}

func newExecutionTasksCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks EXECUTION_ID",
		Short: "List task executions in launch order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			tasks, err := client.ListExecutionTasks(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(tasks))
			for i, t := range tasks {
				rows[i] = taskExecutionRow(t)
			}

			out.Print(taskExecutionHeaders, rows, tasks)
			return nil
		},
	}
}
