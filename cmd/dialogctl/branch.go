package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dialog-db/dialog-db-sub004/blockstore"
	"github.com/dialog-db/dialog-db-sub004/branch"
	"github.com/dialog-db/dialog-db-sub004/cell"
	"github.com/dialog-db/dialog-db-sub004/prolly"
	"github.com/dialog-db/dialog-db-sub004/triple"
)

// openBranch wires a branch.Branch for subject through the application's
// shared cell.Pool rather than calling branch.Open directly: dialogctl can
// touch the same branch from more than one subcommand path within a
// single process (e.g. a batch script invoking commit then select in a
// loop without re-exec'ing), and the pool is what makes those calls see
// one consistent cell instead of each opening its own.
func openBranch(ctx context.Context, subject string) (*branch.Branch, error) {
	a, err := ensureApp()
	if err != nil {
		return nil, err
	}
	blockBackend, err := openBlockBackend(a.cfg)
	if err != nil {
		return nil, err
	}
	store, err := blockstore.NewStore(blockBackend, a.cfg.Cache.NodeCacheEntries, nil)
	if err != nil {
		return nil, err
	}
	store.SetMetrics(a.metrics)

	address := "branch/" + subject
	cellBackend, err := openCellBackend(a.cfg, address)
	if err != nil {
		return nil, err
	}

	sharedCell, err := cell.OpenShared(ctx, a.pool, subject, address, cellBackend, branch.BranchStateCodec())
	if err != nil {
		return nil, err
	}

	b := branch.Load(subject, sharedCell, store, prolly.DefaultBranchFactor, nil)
	b.SetMetrics(a.metrics)
	return b, nil
}

func branchCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "branch", Short: "Inspect and advance a branch's revision history"}
	cmd.AddCommand(branchOpenCmd(), branchCommitCmd(), branchSelectCmd())
	return cmd
}

func branchOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <subject>",
		Short: "Open (initializing if needed) a branch and print its current revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBranch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, b.Current())
		},
	}
}

func branchCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit <subject> <issuer> <batch.json>",
		Short: "Apply a batch of assertions and retractions as one revision",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, issuer, path := args[0], args[1], args[2]

			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read batch file: %w", err)
			}
			var batch commitFile
			if err := json.Unmarshal(raw, &batch); err != nil {
				return fmt.Errorf("parse batch file: %w", err)
			}

			assert, err := toArtifacts(batch.Assert)
			if err != nil {
				return err
			}
			retract, err := toArtifacts(batch.Retract)
			if err != nil {
				return err
			}

			b, err := openBranch(cmd.Context(), subject)
			if err != nil {
				return err
			}
			rev, err := b.Commit(cmd.Context(), issuer, assert, retract)
			if err != nil {
				return err
			}
			zap.L().Sugar().Infow("committed revision", "subject", subject, "issuer", issuer, "period", rev.Period, "moment", rev.Moment)
			return printJSON(cmd, rev)
		},
	}
}

func branchSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <subject> <selector.json>",
		Short: "Query a branch's current index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, path := args[0], args[1]

			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read selector file: %w", err)
			}
			var sf selectorFile
			if err := json.Unmarshal(raw, &sf); err != nil {
				return fmt.Errorf("parse selector file: %w", err)
			}
			sel, err := sf.toSelector()
			if err != nil {
				return err
			}

			b, err := openBranch(cmd.Context(), subject)
			if err != nil {
				return err
			}
			artifacts, err := b.Select(sel)
			if err != nil {
				return err
			}
			out := make([]artifactJSON, len(artifacts))
			for i, a := range artifacts {
				out[i] = artifactToJSON(a)
			}
			return printJSON(cmd, out)
		},
	}
}

func toArtifacts(items []artifactJSON) ([]triple.Artifact, error) {
	out := make([]triple.Artifact, len(items))
	for i, item := range items {
		a, err := item.toArtifact()
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
