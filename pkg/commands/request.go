package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/router"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
)

func init() {
	var method, data string
	var noAuth bool

	requestCmd := &cobra.Command{
		Use:   "request <path>",
		Short: "Send one request through the resolver with failover",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			resolver := router.NewResolverService(config, "cli")
			if err := resolver.Build(cmd.Context()); err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = resolver.Shutdown(ctx)
			}()

			options := &types.RequestOptions{Method: strings.ToUpper(method)}
			if data != "" {
				options.Body = []byte(data)
			}

			body, err := resolver.Client().Request(cmd.Context(), args[0], options, !noAuth)
			if err != nil {
				if response := types.ResponseOf(err); len(response) > 0 {
					fmt.Fprintln(os.Stderr, string(response))
				}
				return err
			}
			fmt.Println(string(body))
			return nil
		},
	}
	requestCmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method")
	requestCmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	requestCmd.Flags().BoolVar(&noAuth, "no-auth", false, "Do not attach the stored bearer token")
	rootCmd.AddCommand(requestCmd)
}
