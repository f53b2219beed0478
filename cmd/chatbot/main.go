// Package main 是对话组件的终端客户端。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	store      string
	transport  string
	baseURL    string
	plain      bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "chatbot",
		Short:         "Trò chuyện với trợ lý tư vấn da liễu",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), flags, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "path to config.yaml (defaults to ./configs/config.yaml when present)")
	pf.StringVar(&flags.store, "store", "", "persistence backend: remote or local")
	pf.StringVar(&flags.transport, "transport", "", "exchange transport: http or websocket")
	pf.StringVar(&flags.baseURL, "base-url", "", "chat service address")
	root.Flags().BoolVar(&flags.plain, "plain", false, "print replies without markdown rendering")

	root.AddCommand(newPurgeCommand(flags))
	return root
}
