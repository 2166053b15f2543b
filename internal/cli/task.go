package cli

import (
	"github.com/spf13/cobra"
)

// NewTaskCmd создаёт группу команд для каталога задач.
func NewTaskCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect the task catalog",
	}

	cmd.AddCommand(newTaskListCmd(clientFn, outputFn))

	return cmd
}

func newTaskListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			tasks, err := client.ListTasks()
			if err != nil {
				return err
			}

			headers := []string{"NAME", "DESCRIPTION"}
			rows := make([][]string, len(tasks))
			for i, t := range tasks {
				rows[i] = []string{t.Name, t.Description}
			}

			out.Print(headers, rows, tasks)
			return nil
		},
	}
}
