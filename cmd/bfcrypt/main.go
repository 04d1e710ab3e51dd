// bfcrypt encrypts and decrypts text with Blowfish, either directly from the
// command line or through an HTTP API, and keeps named ciphertexts in a vault.
package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dcrodman/bfcrypt/internal/core"
)

// keyEnvVar is consulted when no --key flag is given so that keys can stay
// out of shell history.
const keyEnvVar = "BFCRYPT_KEY"

type options struct {
	configDir string
	key       string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "bfcrypt",
		Short:         "Blowfish text encryption tool and server",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configDir, "config", "c", "", "Path to the directory containing config.yaml")

	rootCmd.AddCommand(newEncryptCmd(opts))
	rootCmd.AddCommand(newDecryptCmd(opts))
	rootCmd.AddCommand(newInspectCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newVaultCmd(opts))
	return rootCmd
}

func addKeyFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "Encryption key, 4 to 56 bytes (defaults to $"+keyEnvVar+")")
}

func (o *options) resolveKey() (string, error) {
	if o.key != "" {
		return o.key, nil
	}
	if k := os.Getenv(keyEnvVar); k != "" {
		return k, nil
	}
	return "", errors.New("a key is required (--key or $" + keyEnvVar + ")")
}

func (o *options) loadConfig() (*core.Config, *logrus.Logger, error) {
	cfg, err := core.LoadConfig(o.configDir)
	if err != nil {
		return nil, nil, errors.Wrap(err, "loading config")
	}
	logger, err := core.NewLogger(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "initializing logger")
	}
	logger.Debugf("loaded configuration from %q", o.configDir)
	return cfg, logger, nil
}
