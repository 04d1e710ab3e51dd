package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
	"gorm.io/gorm"

	bytes2 "github.com/dcrodman/bfcrypt/internal/core/bytes"
	"github.com/dcrodman/bfcrypt/internal/data"
	"github.com/dcrodman/bfcrypt/internal/encryption"
)

type vaultEntry struct {
	Name       string    `json:"name" yaml:"name"`
	Ciphertext string    `json:"ciphertext" yaml:"ciphertext"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

func newVaultCmd(opts *options) *cobra.Command {
	vaultCmd := &cobra.Command{
		Use:   "vault",
		Short: "Stores and retrieves named ciphertexts",
	}

	var decryptFlag bool
	getCmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Prints a stored ciphertext, or its plaintext with --decrypt",
		Args:  cobra.ExactArgs(1),
		RunE: withVault(opts, func(cmd *cobra.Command, args []string, db *gorm.DB) error {
			record, err := findRecord(db, args[0])
			if err != nil {
				return err
			}
			if !decryptFlag {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), bytes2.BytesToHex(record.Data))
				return err
			}

			key, err := opts.resolveKey()
			if err != nil {
				return err
			}
			plaintext, err := decrypt(key, record.Data)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), bytes2.BytesToText(plaintext))
			return err
		}),
	}
	getCmd.Flags().BoolVarP(&decryptFlag, "decrypt", "d", false, "Decrypt the stored ciphertext with --key")
	addKeyFlag(getCmd, opts)

	saveCmd := &cobra.Command{
		Use:   "save NAME [ciphertext-hex]",
		Short: "Stores a hex ciphertext under NAME (reads standard input without one)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withVault(opts, func(cmd *cobra.Command, args []string, db *gorm.DB) error {
			hexCiphertext, err := argOrStdin(cmd, args[1:])
			if err != nil {
				return err
			}
			ciphertext, err := bytes2.HexToBytes(hexCiphertext)
			if err != nil {
				return errors.Wrap(err, "ciphertext must be valid hex")
			}
			if len(ciphertext) == 0 || len(ciphertext)%encryption.BlockSize != 0 {
				return encryption.CiphertextSizeError(len(ciphertext))
			}

			if err := data.CreateCiphertext(db, &data.Ciphertext{Name: args[0], Data: ciphertext}); err != nil {
				return errors.Wrapf(err, "saving %s", args[0])
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d bytes)\n", args[0], len(ciphertext))
			return err
		}),
	}

	var outputFlag string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Lists stored ciphertexts",
		Args:  cobra.NoArgs,
		RunE: withVault(opts, func(cmd *cobra.Command, args []string, db *gorm.DB) error {
			records, err := data.ListCiphertexts(db)
			if err != nil {
				return errors.Wrap(err, "listing ciphertexts")
			}
			entries := make([]vaultEntry, 0, len(records))
			for _, r := range records {
				entries = append(entries, vaultEntry{
					Name:       r.Name,
					Ciphertext: bytes2.BytesToHex(r.Data),
					CreatedAt:  r.CreatedAt.UTC(),
				})
			}
			return printEntries(cmd, outputFlag, entries)
		}),
	}
	listCmd.Flags().StringVarP(&outputFlag, "output", "o", "table", "Output format: table, json or yaml")

	deleteCmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Deletes a stored ciphertext",
		Args:  cobra.ExactArgs(1),
		RunE: withVault(opts, func(cmd *cobra.Command, args []string, db *gorm.DB) error {
			deleted, err := data.DeleteCiphertext(db, args[0])
			if err != nil {
				return errors.Wrapf(err, "deleting %s", args[0])
			}
			if !deleted {
				return fmt.Errorf("no ciphertext named %s", args[0])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			return err
		}),
	}

	vaultCmd.AddCommand(saveCmd, getCmd, listCmd, deleteCmd)
	return vaultCmd
}

// withVault opens the configured database around fn.
func withVault(opts *options, fn func(*cobra.Command, []string, *gorm.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, _, err := opts.loadConfig()
		if err != nil {
			return err
		}
		db, err := data.Open(cfg)
		if err != nil {
			return errors.Wrap(err, "opening vault database")
		}
		defer data.Close(db)
		return fn(cmd, args, db)
	}
}

func findRecord(db *gorm.DB, name string) (*data.Ciphertext, error) {
	record, err := data.FindCiphertext(db, name)
	if err != nil {
		return nil, errors.Wrapf(err, "looking up %s", name)
	}
	if record == nil {
		return nil, fmt.Errorf("no ciphertext named %s", name)
	}
	return record, nil
}

func printEntries(cmd *cobra.Command, format string, entries []vaultEntry) error {
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		b, err := yaml.Marshal(entries)
		if err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		_, err = out.Write(b)
		return err
	case "table":
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tBYTES\tCREATED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%d\t%s\n", e.Name, len(e.Ciphertext)/2, e.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
