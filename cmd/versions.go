package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bhanmrinal/cf-project/internal/logger"
	"github.com/bhanmrinal/cf-project/internal/versions"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Inspect and revert stored resume versions",
}

func init() {
	rootCmd.AddCommand(versionsCmd)

	versionsCmd.AddCommand(
		&cobra.Command{
			Use:   "list <resume-id>",
			Short: "List every version of a resume",
			Args:  cobra.ExactArgs(1),
			RunE: withVersionStore(func(ctx context.Context, store *versions.Store, args []string) (any, error) {
				list, current, err := store.History(ctx, args[0])
				if err != nil {
					return nil, err
				}
				lines := make([]string, 0, len(list))
				for _, v := range list {
					lines = append(lines, versionLine(v, current))
				}
				return lines, nil
			}),
		},
		&cobra.Command{
			Use:   "show <resume-id> <seq>",
			Short: "Print one version",
			Args:  cobra.ExactArgs(2),
			RunE: withVersionStore(func(ctx context.Context, store *versions.Store, args []string) (any, error) {
				seq, err := strconv.Atoi(args[1])
				if err != nil {
					return nil, fmt.Errorf("seq must be a number: %w", err)
				}
				return store.Get(ctx, args[0], seq)
			}),
		},
		&cobra.Command{
			Use:   "revert <resume-id> <seq>",
			Short: "Make an earlier version current",
			Args:  cobra.ExactArgs(2),
			RunE: withVersionStore(func(ctx context.Context, store *versions.Store, args []string) (any, error) {
				seq, err := strconv.Atoi(args[1])
				if err != nil {
					return nil, fmt.Errorf("seq must be a number: %w", err)
				}
				return store.Revert(ctx, args[0], seq)
			}),
		},
		&cobra.Command{
			Use:   "compare <resume-id> <from> <to>",
			Short: "Diff two versions section by section",
			Args:  cobra.ExactArgs(3),
			RunE: withVersionStore(func(ctx context.Context, store *versions.Store, args []string) (any, error) {
				a, err := strconv.Atoi(args[1])
				if err != nil {
					return nil, fmt.Errorf("from must be a number: %w", err)
				}
				b, err := strconv.Atoi(args[2])
				if err != nil {
					return nil, fmt.Errorf("to must be a number: %w", err)
				}
				return store.Compare(ctx, args[0], a, b)
			}),
		},
	)
}

// withVersionStore opens only the configured storage, so these commands work
// without an llm api key.
func withVersionStore(fn func(ctx context.Context, store *versions.Store, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		config, err := getConfig()
		if err != nil {
			return err
		}
		if config.Storage.Driver != storagePostgres {
			logger.Warn("in-memory storage starts empty, versions only exist inside a running serve or run process")
		}

		d := &deps{}
		defer d.Close()

		_, backend, err := newStorage(ctx, config.Storage, logger, d)
		if err != nil {
			return err
		}

		result, err := fn(ctx, versions.New(backend, logger), args)
		if err != nil {
			return err
		}

		pretty, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
		logger.Debug("versions command finished", zap.String("command", cmd.Name()))
		return nil
	}
}
