package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dialog-db/dialog-db-sub004/cell"
)

func bytesCodec() cell.Codec[[]byte] {
	return cell.Codec[[]byte]{
		Encode: func(b []byte) ([]byte, error) { return b, nil },
		Decode: func(b []byte) ([]byte, error) { return b, nil },
	}
}

func openNamedCell(ctx context.Context, space, name string) (*cell.Cell[[]byte], error) {
	a, err := ensureApp()
	if err != nil {
		return nil, err
	}
	backend, err := openCellBackend(a.cfg, "memory/"+space+"/"+name)
	if err != nil {
		return nil, err
	}
	return cell.Open(ctx, backend, bytesCodec())
}

func cellCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cell", Short: "Read and write a transactional memory cell"}
	cmd.AddCommand(cellResolveCmd(), cellPublishCmd())
	return cmd
}

func cellResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <space> <name>",
		Short: "Print a cell's current content to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openNamedCell(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(c.Read())
			return err
		},
	}
}

func cellPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <space> <name> <file>",
		Short: "Publish a file's contents to a cell, conditioned on its current edition",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			space, name, path := args[0], args[1], args[2]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			c, err := openNamedCell(cmd.Context(), space, name)
			if err != nil {
				return err
			}
			if err := c.Replace(cmd.Context(), data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s/%s at edition %s\n", space, name, c.Edition())
			return nil
		},
	}
}
