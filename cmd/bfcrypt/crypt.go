package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	bytes2 "github.com/dcrodman/bfcrypt/internal/core/bytes"
	"github.com/dcrodman/bfcrypt/internal/encryption"
)

func newEncryptCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt [plaintext]",
		Short: "Encrypts text and prints the ciphertext as hex",
		Long:  "Encrypts the plaintext argument, or standard input when none is given, and prints the ciphertext as hex.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := opts.resolveKey()
			if err != nil {
				return err
			}
			plaintext, err := argOrStdin(cmd, args)
			if err != nil {
				return err
			}
			if plaintext == "" {
				return errors.New("key and plaintext are required")
			}

			c, err := encryption.NewCipher(bytes2.TextToBytes(key))
			if err != nil {
				return errors.Wrap(err, "encryption failed")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), bytes2.BytesToHex(c.Encrypt(bytes2.TextToBytes(plaintext))))
			return err
		},
	}
	addKeyFlag(cmd, opts)
	return cmd
}

func newDecryptCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt [ciphertext-hex]",
		Short: "Decrypts hex ciphertext and prints the plaintext",
		Long:  "Decrypts the hex ciphertext argument, or standard input when none is given, and prints the plaintext.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := opts.resolveKey()
			if err != nil {
				return err
			}
			hexCiphertext, err := argOrStdin(cmd, args)
			if err != nil {
				return err
			}
			hexCiphertext = strings.TrimSpace(hexCiphertext)
			if hexCiphertext == "" {
				return errors.New("key and ciphertext are required")
			}

			ciphertext, err := bytes2.HexToBytes(hexCiphertext)
			if err != nil {
				return errors.Wrap(err, "ciphertext must be valid hex")
			}
			plaintext, err := decrypt(key, ciphertext)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), bytes2.BytesToText(plaintext))
			return err
		},
	}
	addKeyFlag(cmd, opts)
	return cmd
}

func decrypt(key string, ciphertext []byte) ([]byte, error) {
	c, err := encryption.NewCipher(bytes2.TextToBytes(key))
	if err != nil {
		return nil, errors.Wrap(err, "decryption failed")
	}
	plaintext, err := c.Decrypt(ciphertext)
	if err != nil {
		return nil, errors.Wrap(err, "decryption failed")
	}
	return plaintext, nil
}

// argOrStdin returns the single positional argument or, without one, all of
// standard input minus one trailing line break.
func argOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Wrap(err, "reading standard input")
	}
	s := strings.TrimSuffix(string(b), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}
