package cmd

import (
	"fmt"
	"os"

	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/openml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var evaluationCmd = &cobra.Command{
	Use:   "evaluation",
	Short: "Evaluation engine operations",
}

var evaluationRequestCmd = &cobra.Command{
	Use:   "request <engine-id> <count>",
	Short: "Claim runs waiting for evaluation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := intArg(args, 0, "engine id")
		if err != nil {
			return err
		}
		count, err := intArg(args, 1, "count")
		if err != nil {
			return err
		}
		mode, err := cmd.Flags().GetString("mode")
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		req, err := client.EvaluationRequest(cmd.Context(), engine, mode, count)
		if err != nil {
			return err
		}
		return printDocument(cmd, model.EvaluationRequestTable, req)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <schema> <document.xml>",
	Short: "Validate a document against a schema served by OpenML",
	Example: `
openml validate openml.data.upload description.xml
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := os.ReadFile(args[1])
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", args[1])
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.ValidateDocument(cmd.Context(), args[0], doc); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", args[1])
		return err
	},
}

func init() {
	evaluationRequestCmd.Flags().String("mode", openml.ModeNormal, "Selection mode: normal or random")
	evaluationCmd.AddCommand(evaluationRequestCmd)
	RootCmd.AddCommand(evaluationCmd, validateCmd)
}
