package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show chain and mining status of a running node",
	RunE: func(cmd *cobra.Command, args []string) error {
		var stats struct {
			Data struct {
				Height            int     `json:"height"`
				Difficulty        int     `json:"difficulty"`
				PendingCount      int     `json:"pendingCount"`
				TotalTransactions int     `json:"totalTransactions"`
				Valid             bool    `json:"valid"`
				MiningReward      float64 `json:"miningReward"`
			} `json:"data"`
		}

		resp, err := apiClient().R().SetResult(&stats).Get("/api/chain/stats")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("node returned %s: %s", resp.Status(), resp.String())
		}

		var mining struct {
			Data struct {
				Running         bool    `json:"running"`
				RewardAddress   string  `json:"rewardAddress"`
				BlocksMined     uint64  `json:"blocksMined"`
				HashRate        float64 `json:"hashRate"`
				NetworkHashRate float64 `json:"networkHashRate"`
			} `json:"data"`
		}

		resp, err = apiClient().R().SetResult(&mining).Get("/api/mining/status")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("node returned %s: %s", resp.Status(), resp.String())
		}

		fmt.Println("Chain")
		fmt.Printf("  height:        %d\n", stats.Data.Height)
		fmt.Printf("  difficulty:    %d\n", stats.Data.Difficulty)
		fmt.Printf("  pending:       %d\n", stats.Data.PendingCount)
		fmt.Printf("  transactions:  %d\n", stats.Data.TotalTransactions)
		fmt.Printf("  valid:         %t\n", stats.Data.Valid)
		fmt.Println("Mining")
		fmt.Printf("  running:       %t\n", mining.Data.Running)
		if mining.Data.RewardAddress != "" {
			fmt.Printf("  reward to:     %s\n", mining.Data.RewardAddress)
		}
		fmt.Printf("  blocks mined:  %d\n", mining.Data.BlocksMined)
		fmt.Printf("  hash rate:     %.0f H/s\n", mining.Data.HashRate)
		fmt.Printf("  network rate:  %.0f H/s\n", mining.Data.NetworkHashRate)
		return nil
	},
}
