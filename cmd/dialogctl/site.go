package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dialog-db/dialog-db-sub004/pkg/config"
)

func siteCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "site", Short: "Manage remote site configuration"}
	cmd.AddCommand(siteAddCmd())
	return cmd
}

func siteAddCmd() *cobra.Command {
	var endpoint, region, bucket, credentialsKind, accessKeyID, secretAccessKey, configPath string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a remote site's endpoint and credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if credentialsKind != "direct" && credentialsKind != "ucan" {
				return fmt.Errorf("--credentials-kind must be \"direct\" or \"ucan\", got %q", credentialsKind)
			}
			site := config.SiteConfig{
				Name:            args[0],
				Endpoint:        endpoint,
				Region:          region,
				Bucket:          bucket,
				CredentialsKind: credentialsKind,
				AccessKeyID:     accessKeyID,
				SecretAccessKey: secretAccessKey,
			}
			if err := writeSiteConfig(site, configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "site %q registered\n", site.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "S3-compatible endpoint URL (required)")
	cmd.Flags().StringVar(&region, "region", "", "SigV4 signing region (required)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "bucket name (required)")
	cmd.Flags().StringVar(&credentialsKind, "credentials-kind", "direct", "\"direct\" or \"ucan\"")
	cmd.Flags().StringVar(&accessKeyID, "access-key-id", "", "SigV4 access key ID (direct credentials)")
	cmd.Flags().StringVar(&secretAccessKey, "secret-access-key", "", "SigV4 secret access key (direct credentials)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file to update (default config/default.yaml)")
	cmd.MarkFlagRequired("endpoint")
	cmd.MarkFlagRequired("region")
	cmd.MarkFlagRequired("bucket")

	return cmd
}
