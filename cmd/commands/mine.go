package commands

import (
	"fmt"
	"path/filepath"

	"github.com/Ubaid-developer/keta-chain/pkg/core"
	"github.com/Ubaid-developer/keta-chain/pkg/db"
	"github.com/Ubaid-developer/keta-chain/pkg/store"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	mineReward string
	mineBlocks int
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Control mining",
}

// mineStartCmd and mineStopCmd drive the background miner of a running node
var mineStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the background miner on a running node",
	RunE: func(cmd *cobra.Command, args []string) error {
		if mineReward == "" {
			return fmt.Errorf("--reward is required")
		}

		resp, err := apiClient().R().
			SetBody(map[string]string{"rewardAddress": mineReward}).
			Post("/api/mining/start")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("node returned %s: %s", resp.Status(), resp.String())
		}

		fmt.Println("Mining started, rewards to", mineReward)
		return nil
	},
}

var mineStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background miner on a running node",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiClient().R().Post("/api/mining/stop")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("node returned %s: %s", resp.Status(), resp.String())
		}

		fmt.Println("Mining stopped")
		return nil
	},
}

// mineLocalCmd mines directly against the local data directory, useful for
// seeding a chain without running a node. Must not run while a node holds
// the same database.
var mineLocalCmd = &cobra.Command{
	Use:   "local",
	Short: "Mine blocks directly against the local data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if mineReward == "" {
			return fmt.Errorf("--reward is required")
		}

		database, err := db.New(db.Type(viper.GetString("db")))
		if err != nil {
			return err
		}
		if err := database.Open(filepath.Join(viper.GetString("data-dir"), "chaindata")); err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		ledger := core.NewLedger(
			viper.GetInt("difficulty"),
			viper.GetFloat64("mining-reward"),
			viper.GetInt("max-block-txs"),
			store.New(database),
		)

		bar := progressbar.NewOptions(mineBlocks,
			progressbar.OptionSetDescription("mining"),
			progressbar.OptionShowCount(),
		)

		for i := 0; i < mineBlocks; i++ {
			block, _, err := ledger.MinePendingTransactions(cmd.Context(), mineReward)
			if err != nil {
				return err
			}
			bar.Describe(fmt.Sprintf("mined #%d %s", block.Index, block.Hash[:12]))
			bar.Add(1)
		}
		fmt.Println()

		fmt.Printf("Chain height: %d, reward balance: %.2f KTA\n",
			ledger.Height(), ledger.GetBalance(mineReward))
		return nil
	},
}

func init() {
	mineCmd.PersistentFlags().StringVar(&mineReward, "reward", "", "Reward address for mined blocks")
	mineLocalCmd.Flags().IntVar(&mineBlocks, "blocks", 1, "Number of blocks to mine")

	mineCmd.AddCommand(mineStartCmd)
	mineCmd.AddCommand(mineStopCmd)
	mineCmd.AddCommand(mineLocalCmd)
}
