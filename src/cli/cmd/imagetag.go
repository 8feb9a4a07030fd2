package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidaislive/forksync/src/gitver"
	"github.com/vidaislive/forksync/src/output"
)

var itPrefix string

var imageTagCmd = &cobra.Command{
	Use:   "image-tag REF...",
	Short: "Print the docker image tag derived from release refs",
	Example: `  forksync image-tag vida-v2026.2.14     # 2026-02-14
  forksync image-tag feature/foo         # feature-foo`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := stringOr(itPrefix, cfg.Sync.ForkTagPrefix)
		if len(args) == 1 {
			fmt.Fprintln(cmd.OutOrStdout(), gitver.ImageTag(args[0], prefix))
			return nil
		}
		pairs := make([][2]string, len(args))
		for i, ref := range args {
			pairs[i] = [2]string{ref, gitver.ImageTag(ref, prefix)}
		}
		output.ImageTags(cmd.OutOrStdout(), pairs)
		return nil
	},
}

func init() {
	imageTagCmd.Flags().StringVar(&itPrefix, "fork-tag-prefix", "", "fork tag prefix (default: vida-)")
	rootCmd.AddCommand(imageTagCmd)
}
