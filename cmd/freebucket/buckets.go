package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"freebucket/internal/storage"
)

func newMakeBucketCmd() *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:     "make-bucket <bucket>",
		Aliases: []string{"mb"},
		Short:   "Create a new bucket",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}

			bucket, err := engine.CreateBucket(args[0], region)
			if err != nil {
				return err
			}

			fmt.Printf("created bucket %s (region %s)\n", bucket.Name, bucket.Region)
			return nil
		},
	}

	cmd.Flags().StringVar(&region, "region", "local", "region label for the new bucket")

	return cmd
}

func newRemoveBucketCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove-bucket <bucket>",
		Aliases: []string{"rb"},
		Short:   "Delete an empty bucket",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}

			if err := engine.DeleteBucket(args[0]); err != nil {
				return err
			}

			fmt.Printf("removed bucket %s\n", args[0])
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var (
		prefix    string
		delimiter string
		maxKeys   int
	)

	cmd := &cobra.Command{
		Use:     "list [bucket]",
		Aliases: []string{"ls"},
		Short:   "List buckets, or the objects in a bucket",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return printBuckets(engine)
			}
			return printObjects(engine, args[0], prefix, delimiter, maxKeys)
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "only list keys starting with this prefix")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "fold keys at this delimiter into common prefixes")
	cmd.Flags().IntVar(&maxKeys, "max-keys", 1000, "maximum number of objects to list")

	return cmd
}

func printBuckets(engine *storage.Engine) error {
	buckets := engine.ListBuckets()
	if len(buckets) == 0 {
		fmt.Println("no buckets")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tREGION\tOBJECTS\tSIZE\tCREATED")
	for _, b := range buckets {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			b.Name, b.Region, b.ObjectCount, storage.HumanSize(b.TotalSize), b.CreatedAt.UTC().Format(time.RFC3339))
	}
	return w.Flush()
}

func printObjects(engine *storage.Engine, bucket, prefix, delimiter string, maxKeys int) error {
	result, err := engine.ListObjects(bucket, prefix, delimiter, maxKeys)
	if err != nil {
		return err
	}

	if len(result.Objects) == 0 && len(result.CommonPrefixes) == 0 {
		fmt.Println("no objects")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range result.CommonPrefixes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p, "-", "-")
	}
	for _, obj := range result.Objects {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			obj.Key, storage.HumanSize(obj.Size), obj.LastModified.UTC().Format(time.RFC3339))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if result.IsTruncated {
		fmt.Println("(truncated)")
	}
	return nil
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <bucket>",
		Short: "Show details for a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}

			bucket, err := engine.GetBucket(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Name:    %s\n", bucket.Name)
			fmt.Printf("Region:  %s\n", bucket.Region)
			fmt.Printf("Created: %s\n", bucket.CreatedAt.UTC().Format(time.RFC3339))
			fmt.Printf("Objects: %d\n", bucket.ObjectCount)
			fmt.Printf("Size:    %s\n", storage.HumanSize(bucket.TotalSize))
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate storage statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}

			stats := engine.Stats()
			fmt.Printf("Buckets: %d\n", stats.TotalBuckets)
			fmt.Printf("Objects: %d\n", stats.TotalObjects)
			fmt.Printf("Size:    %s (%d bytes)\n", stats.TotalSizeHuman, stats.TotalSize)
			return nil
		},
	}
}
