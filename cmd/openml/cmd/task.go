package cmd

import (
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/openml"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Work with tasks",
}

var taskUploadCmd = &cobra.Command{
	Use:   "upload <task-inputs.xml>",
	Short: "Upload a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := readDocument(model.TaskInputsTable, args[0])
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		ack, err := client.TaskUpload(cmd.Context(), inputs)
		if err != nil {
			return err
		}
		return printDocument(cmd, model.UploadTaskTable, ack)
	},
}

func init() {
	taskCmd.AddCommand(
		idCommand("get", "Show a task", "task", (*openml.Client).TaskGet, model.TaskTable),
		idCommand("delete", "Delete a task", "task", (*openml.Client).TaskDelete, model.TaskDeleteTable),
		taskUploadCmd,
	)
	tagCommands(taskCmd, "task",
		func(c *openml.Client) tagFunc { return c.TaskTag }, model.TaskTagTable,
		func(c *openml.Client) tagFunc { return c.TaskUntag }, model.TaskUntagTable)
	RootCmd.AddCommand(taskCmd)
}
