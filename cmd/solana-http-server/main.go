package main

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/code-payments/solana-http-server/pkg/app"
	"github.com/code-payments/solana-http-server/pkg/keypair"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "solana-http-server",
		Short:         "Stateless HTTP API for building unsigned Solana instructions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(), newKeygenCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Run(configPath); err != nil {
				logrus.StandardLogger().WithField("type", "main").WithError(err).Error("error running service")
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "configuration file path")
	return cmd
}

// newKeygenCommand prints a fresh key pair in the same shape as POST /keypair.
func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := keypair.NewGenerator(nil).Generate()
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(map[string]string{
				"pubkey": kp.PublicKeyBase58(),
				"secret": kp.SecretBase58(),
			})
		},
	}
}
