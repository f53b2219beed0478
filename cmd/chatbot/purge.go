package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatbot-go/pkg/log"
)

func newPurgeCommand(flags *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Xóa toàn bộ lịch sử trò chuyện trong kho lưu trữ đã cấu hình",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			defer log.Sync()

			if !yes {
				return fmt.Errorf("refusing to purge %s store without --yes", cfg.Client.Store)
			}

			ctx := cmd.Context()
			api := newAPIClient(ctx, cfg.Client)
			st, closeStore, err := openStore(cfg, api)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := st.DeleteAll(ctx); err != nil {
				return err
			}
			log.Infow("conversation history purged", "store", cfg.Client.Store)
			fmt.Fprintln(cmd.OutOrStdout(), "Đã xóa tất cả lịch sử trò chuyện.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the safety check")
	return cmd
}
