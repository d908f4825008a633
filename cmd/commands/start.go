package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ubaid-developer/keta-chain/pkg/node"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	startMine   bool
	startReward string
)

// startCmd runs a full node: gossip listener, REST API and (optionally) the
// background miner
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a keta-chain node",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := node.Config{
			DataDir:      viper.GetString("data-dir"),
			DBBackend:    viper.GetString("db"),
			P2PPort:      viper.GetInt("p2p-port"),
			APIPort:      viper.GetInt("api-port"),
			Difficulty:   viper.GetInt("difficulty"),
			MiningReward: viper.GetFloat64("mining-reward"),
			MaxBlockTxs:  viper.GetInt("max-block-txs"),
			MineInterval: viper.GetDuration("mine-interval"),
			Peers:        viper.GetStringSlice("peers"),
		}

		app, err := node.New(cfg)
		if err != nil {
			return err
		}

		if startMine {
			if startReward == "" {
				return fmt.Errorf("--reward is required with --mine")
			}
			if err := app.Miner.Start(startReward); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Node started (p2p :%d, api :%d, difficulty %d)\n",
			cfg.P2PPort, cfg.APIPort, cfg.Difficulty)
		return app.Run(ctx)
	},
}

func init() {
	startCmd.Flags().BoolVar(&startMine, "mine", false, "Start mining at boot")
	startCmd.Flags().StringVar(&startReward, "reward", "", "Reward address for mined blocks")
	startCmd.Flags().Int("difficulty", 2, "Proof-of-work difficulty (leading zero hex characters)")
	startCmd.Flags().Float64("mining-reward", 10.0, "Reward amount minted per block")
	startCmd.Flags().Int("max-block-txs", 10, "Maximum pool transactions per mined block")
	startCmd.Flags().Duration("mine-interval", 0, "Pause between mining attempts")
	startCmd.Flags().StringSlice("peers", nil, "Seed peer endpoints (host:port)")

	viper.BindPFlag("difficulty", startCmd.Flags().Lookup("difficulty"))
	viper.BindPFlag("mining-reward", startCmd.Flags().Lookup("mining-reward"))
	viper.BindPFlag("max-block-txs", startCmd.Flags().Lookup("max-block-txs"))
	viper.BindPFlag("mine-interval", startCmd.Flags().Lookup("mine-interval"))
	viper.BindPFlag("peers", startCmd.Flags().Lookup("peers"))
}
