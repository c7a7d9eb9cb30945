package cmd

import (
	"context"
	"io"
	"os"

	"github.com/openml/openml-go/connector"
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/openml"
	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Work with datasets",
}

var dataListCmd = &cobra.Command{
	Use:   "list",
	Short: "List datasets",
	Example: `
openml data list --filter tag=study_14 --filter number_instances=100..1000 --filter limit=10
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := cmd.Flags().GetStringToString("filter")
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		list, err := client.DataList(cmd.Context(), openml.Filters(filters))
		if err != nil {
			return err
		}
		return printDocument(cmd, model.DataListTable, list)
	},
}

var dataQualitiesListCmd = &cobra.Command{
	Use:   "qualities-list",
	Short: "List the names of the computed dataset qualities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		list, err := client.DataQualitiesList(cmd.Context())
		if err != nil {
			return err
		}
		return printDocument(cmd, model.DataQualityListTable, list)
	},
}

var dataUploadCmd = &cobra.Command{
	Use:   "upload <description.xml> [dataset-file]",
	Short: "Upload a dataset",
	Long:  "Upload a dataset description together with its data file. Without a data file the server fetches the description's url.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsd, err := readDocument(model.DatasetDescriptionTable, args[0])
		if err != nil {
			return err
		}
		var dataset *connector.File
		if len(args) == 2 {
			f, err := connector.FileFromPath("dataset", args[1])
			if err != nil {
				return err
			}
			dataset = &f
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		ack, err := client.DataUpload(cmd.Context(), dsd, dataset)
		if err != nil {
			return err
		}
		return printDocument(cmd, model.UploadDataSetTable, ack)
	},
}

var dataStatusCmd = &cobra.Command{
	Use:   "status <id> <active|deactivated>",
	Short: "Activate or deactivate a dataset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := intArg(args, 0, "dataset id")
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		ack, err := client.DataStatusUpdate(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		return printDocument(cmd, model.DataStatusUpdateTable, ack)
	},
}

var dataUnprocessedCmd = &cobra.Command{
	Use:   "unprocessed <engine-id>",
	Short: "Claim a dataset that an evaluation engine has not processed yet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := intArg(args, 0, "engine id")
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
		d, err := client.DataUnprocessed(cmd.Context(), engine, mode)
		if err != nil {
			return err
		}
		return printDocument(cmd, model.DataUnprocessedTable, d)
	},
}

var dataDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download the data file of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDataset(cmd, args, func(ctx context.Context, client *openml.Client, dsd *model.DatasetDescription, w io.Writer) error {
			sum, err := client.DownloadDataset(ctx, dsd, w)
			if err != nil {
				return err
			}
			if expected := xmlmap.StringValue(dsd.MD5Checksum); expected != "" && sum != expected {
				return errors.Errorf("checksum mismatch: expected %s, got %s", expected, sum)
			}
			return nil
		})
	},
}

var dataCSVCmd = &cobra.Command{
	Use:   "csv <id>",
	Short: "Download a dataset converted to CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDataset(cmd, args, func(ctx context.Context, client *openml.Client, dsd *model.DatasetDescription, w io.Writer) error {
			if dsd.FileID == nil {
				return errors.Errorf("dataset %d has no data file", *dsd.ID)
			}
			_, err := client.DataCSV(ctx, *dsd.FileID, dsd.Name, w)
			return err
		})
	},
}

// withDataset fetches the description of the dataset named by args and hands it to
// write together with the output selected by the out flag.
func withDataset(cmd *cobra.Command, args []string, write func(context.Context, *openml.Client, *model.DatasetDescription, io.Writer) error) error {
	id, err := intArg(args, 0, "dataset id")
	if err != nil {
		return err
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	dsd, err := client.DataGet(cmd.Context(), id)
	if err != nil {
		return err
	}
	if out == "" {
		return write(cmd.Context(), client, dsd, cmd.OutOrStdout())
	}
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", out)
	}
	if err := write(cmd.Context(), client, dsd, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	dataListCmd.Flags().StringToString("filter", nil, "Listing filter as name=value, repeatable")
	dataUnprocessedCmd.Flags().String("mode", openml.ModeNormal, "Selection mode: normal or random")
	dataDownloadCmd.Flags().StringP("out", "o", "", "Output file, stdout when empty")
	dataCSVCmd.Flags().StringP("out", "o", "", "Output file, stdout when empty")

	dataCmd.AddCommand(
		idCommand("get", "Show a dataset description", "dataset", (*openml.Client).DataGet, model.DatasetDescriptionTable),
		idCommand("features", "Show the features of a dataset", "dataset", (*openml.Client).DataFeatures, model.DataFeatureTable),
		idCommand("qualities", "Show the qualities of a dataset", "dataset", (*openml.Client).DataQualities, model.DataQualityTable),
		idCommand("delete", "Delete a dataset", "dataset", (*openml.Client).DataDelete, model.DataDeleteTable),
		idCommand("reset", "Reset the processing state of a dataset", "dataset", (*openml.Client).DataReset, model.DataResetTable),
		dataListCmd,
		dataQualitiesListCmd,
		dataUploadCmd,
		dataStatusCmd,
		dataUnprocessedCmd,
		dataDownloadCmd,
		dataCSVCmd,
	)
	tagCommands(dataCmd, "dataset",
		func(c *openml.Client) tagFunc { return c.DataTag }, model.DataTagTable,
		func(c *openml.Client) tagFunc { return c.DataUntag }, model.DataUntagTable)
	RootCmd.AddCommand(dataCmd)
}
