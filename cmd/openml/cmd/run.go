package cmd

import (
	"strings"

	"github.com/openml/openml-go/connector"
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/openml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Work with runs",
}

var runListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs",
	Example: `
openml run list --uploader 1 --tag my_experiment
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter openml.RunFilter
		var err error
		flags := cmd.Flags()
		if filter.Tasks, err = flags.GetIntSlice("task"); err != nil {
			return err
		}
		if filter.Setups, err = flags.GetIntSlice("setup"); err != nil {
			return err
		}
		if filter.Flows, err = flags.GetIntSlice("flow"); err != nil {
			return err
		}
		if filter.Uploaders, err = flags.GetIntSlice("uploader"); err != nil {
			return err
		}
		if filter.Tag, err = flags.GetString("tag"); err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		list, err := client.RunList(cmd.Context(), filter)
		if err != nil {
			return err
		}
		return printDocument(cmd, model.RunListTable, list)
	},
}

var runUploadCmd = &cobra.Command{
	Use:   "upload <run.xml> [output=file ...]",
	Short: "Upload a run with its output files",
	Example: `
openml run upload run.xml predictions=predictions.arff
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := readDocument(model.RunTable, args[0])
		if err != nil {
			return err
		}
		var outputs []connector.File
		for _, arg := range args[1:] {
			name, path, ok := strings.Cut(arg, "=")
			if !ok || name == "" || path == "" {
				return errors.Errorf("output %q must be written as name=file", arg)
			}
			f, err := connector.FileFromPath(name, path)
			if err != nil {
				return err
			}
			outputs = append(outputs, f)
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		ack, err := client.RunUpload(cmd.Context(), run, outputs...)
		if err != nil {
			return err
		}
		return printDocument(cmd, model.UploadRunTable, ack)
	},
}

var runAttachCmd = &cobra.Command{
	Use:   "attach <run-id> <index> <predictions-file>",
	Short: "Attach the predictions of one part of an evaluation to a run",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := intArg(args, 0, "run id")
		if err != nil {
			return err
		}
		index, err := intArg(args, 1, "index")
		if err != nil {
			return err
		}
		predictions, err := connector.FileFromPath("predictions", args[2])
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		ack, err := client.RunUploadAttach(cmd.Context(), id, index, predictions)
		if err != nil {
			return err
		}
		return printDocument(cmd, model.UploadRunAttachTable, ack)
	},
}

func init() {
	runListCmd.Flags().IntSlice("task", nil, "Task ids")
	runListCmd.Flags().IntSlice("setup", nil, "Setup ids")
	runListCmd.Flags().IntSlice("flow", nil, "Flow ids")
	runListCmd.Flags().IntSlice("uploader", nil, "Uploader ids")
	runListCmd.Flags().String("tag", "", "Tag")

	runCmd.AddCommand(
		idCommand("get", "Show a run", "run", (*openml.Client).RunGet, model.RunTable),
		idCommand("delete", "Delete a run", "run", (*openml.Client).RunDelete, model.RunDeleteTable),
		runListCmd,
		runUploadCmd,
		runAttachCmd,
	)
	tagCommands(runCmd, "run",
		func(c *openml.Client) tagFunc { return c.RunTag }, model.RunTagTable,
		func(c *openml.Client) tagFunc { return c.RunUntag }, model.RunUntagTable)
	RootCmd.AddCommand(runCmd)
}
