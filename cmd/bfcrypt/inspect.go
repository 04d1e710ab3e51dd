package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	bytes2 "github.com/dcrodman/bfcrypt/internal/core/bytes"
	"github.com/dcrodman/bfcrypt/internal/encryption"
	"github.com/dcrodman/bfcrypt/internal/keycache"
)

type scheduleDump struct {
	KeyLength   int
	Fingerprint string
	Subkeys     [18]uint32
}

func newInspectCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Dumps the P-array derived from a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := opts.resolveKey()
			if err != nil {
				return err
			}
			keyBytes := bytes2.TextToBytes(key)
			c, err := encryption.NewCipher(keyBytes)
			if err != nil {
				return errors.Wrap(err, "deriving key schedule")
			}

			cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true}
			cfg.Fdump(cmd.OutOrStdout(), scheduleDump{
				KeyLength:   len(keyBytes),
				Fingerprint: keycache.Fingerprint(keyBytes),
				Subkeys:     c.Subkeys(),
			})
			return nil
		},
	}
	addKeyFlag(cmd, opts)
	return cmd
}
