// Package cmd implements the openml command line client.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/openml"
	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var RootCmd = &cobra.Command{
	Use:           "openml",
	Short:         "OpenML command line client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command.
func Execute() {
	cobra.OnInitialize(initConfig)

	if err := RootCmd.Execute(); err != nil {
		RootCmd.PrintErrln(err)
		os.Exit(-1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("openml")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func init() {
	defaults := config.Defaults()
	flags := RootCmd.PersistentFlags()
	flags.String("server", defaults.Server, "OpenML server root")
	flags.String("api-key", "", "API key sent with every call")
	flags.Int("timeout-sec", defaults.TimeoutSec, "Request timeout in seconds")
	flags.Int("retry-max", defaults.RetryMax, "Retries on transport failures and 5xx responses")
	flags.String("cache-dir", "", "Directory for downloaded datasets")
	flags.String("mode", "quiet", "Logging mode: quiet, dev or prod")
	for _, name := range []string{"server", "api-key", "timeout-sec", "retry-max", "cache-dir", "mode"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func newClient() (*openml.Client, error) {
	env := config.Defaults()
	env.Mode = viper.GetString("mode")
	env.Server = viper.GetString("server")
	env.APIKey = viper.GetString("api-key")
	env.TimeoutSec = viper.GetInt("timeout-sec")
	env.RetryMax = viper.GetInt("retry-max")
	env.CacheDir = viper.GetString("cache-dir")

	cfg, err := config.New(env)
	if err != nil {
		return nil, err
	}
	return openml.New(cfg)
}

// printDocument writes v as an OpenML XML document.
func printDocument[T any](cmd *cobra.Command, table *xmlmap.Table[T], v *T) error {
	data, err := table.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func intArg(args []string, i int, name string) (int, error) {
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, errors.Errorf("%s must be a number, got %q", name, args[i])
	}
	return v, nil
}

// readDocument reads an XML description from path and decodes it with table.
func readDocument[T any](table *xmlmap.Table[T], path string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return table.Unmarshal(data)
}

type tagFunc func(ctx context.Context, id int, tag string) (*model.TagAck, error)

// tagCommands adds tag and untag subcommands for an entity to parent.
func tagCommands(parent *cobra.Command, entity string, tag func(*openml.Client) tagFunc, tagTable *xmlmap.Table[model.TagAck],
	untag func(*openml.Client) tagFunc, untagTable *xmlmap.Table[model.TagAck]) {
	build := func(use string, short string, op func(*openml.Client) tagFunc, table *xmlmap.Table[model.TagAck]) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id> <tag>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := intArg(args, 0, entity+" id")
				if err != nil {
					return err
				}
				client, err := newClient()
				if err != nil {
					return err
				}
				ack, err := op(client)(cmd.Context(), id, args[1])
				if err != nil {
					return err
				}
				return printDocument(cmd, table, ack)
			},
		}
	}
	parent.AddCommand(
		build("tag", "Tag a "+entity, tag, tagTable),
		build("untag", "Remove a tag from a "+entity, untag, untagTable),
	)
}

// idCommand builds a command that calls op with a single id argument and prints the
// response document.
func idCommand[T any](use string, short string, entity string, op func(*openml.Client, context.Context, int) (*T, error), table *xmlmap.Table[T]) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args, 0, entity+" id")
			if err != nil {
				return err
			}
			client, err := newClient()
			if err != nil {
				return err
			}
			v, err := op(client, cmd.Context(), id)
			if err != nil {
				return err
			}
			return printDocument(cmd, table, v)
		},
	}
}
