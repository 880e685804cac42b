package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"freebucket/internal/storage"
)

func newPutCmd() *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:     "put <bucket> <file> [key]",
		Aliases: []string{"cp"},
		Short:   "Upload a local file as an object",
		Long: `Upload a local file into a bucket. The object key defaults to the
file's base name.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}

			bucket, file := args[0], args[1]
			key := filepath.Base(file)
			if len(args) == 3 {
				key = args[2]
			}

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			meta, err := engine.PutObject(bucket, key, data, contentType, nil)
			if err != nil {
				return err
			}

			fmt.Printf("stored %s/%s (%s, %s)\n", bucket, meta.Key, storage.HumanSize(meta.Size), meta.ContentType)
			return nil
		},
	}

	cmd.Flags().StringVar(&contentType, "content-type", "", "content type (guessed from the key when empty)")

	return cmd
}

func newGetCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <bucket> <key>",
		Short: "Download an object",
		Long: `Download an object. The payload is written to --output, or to a file
named after the key's base name in the current directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}

			bucket, key := args[0], args[1]
			meta, data, err := engine.GetObject(bucket, key)
			if err != nil {
				return err
			}

			dest := output
			if dest == "" {
				dest = filepath.Base(key)
			}

			if dest == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}

			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dest, err)
			}

			fmt.Printf("wrote %s (%s)\n", dest, storage.HumanSize(meta.Size))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "destination path (- for stdout)")

	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <bucket> <key>",
		Aliases: []string{"rm"},
		Short:   "Delete an object",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}

			if err := engine.DeleteObject(args[0], args[1]); err != nil {
				return err
			}

			fmt.Printf("removed %s/%s\n", args[0], args[1])
			return nil
		},
	}
}
