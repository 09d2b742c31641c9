package main

import (
	"os"

	"github.com/spf13/cobra"

	"singmerge/internal/interfaces/cli/convert"
	"singmerge/internal/interfaces/cli/publish"
	"singmerge/internal/interfaces/cli/server"
	"singmerge/internal/interfaces/cli/token"
	"singmerge/internal/interfaces/cli/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "singmerge",
		Short: "singmerge - share links to sing-box configs",
		Long: `singmerge converts vmess://, vless:// and trojan:// share links into sing-box outbounds,
merges them into a template config and keeps the template's selector groups in sync.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		convert.NewCommand(),
		publish.NewCommand(),
		server.NewCommand(),
		token.NewCommand(),
		version.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
