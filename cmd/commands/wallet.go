package commands

import (
	"fmt"

	"github.com/Ubaid-developer/keta-chain/pkg/wallet"
	"github.com/spf13/cobra"
)

var (
	walletPassword string
	sendFrom       string
	sendTo         string
	sendAmount     float64
	sendData       string
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage accounts and send transactions",
}

var walletNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := wallet.NewWallet(walletPath())
		if err != nil {
			return err
		}

		account, err := w.CreateAccount(walletPassword)
		if err != nil {
			return err
		}

		fmt.Println("Created account:", account.Address)
		fmt.Println("Key file:", account.KeyFile)
		return nil
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import [private-key-hex]",
	Short: "Import an account from a private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := wallet.NewWallet(walletPath())
		if err != nil {
			return err
		}

		account, err := w.ImportAccount(args[0], walletPassword)
		if err != nil {
			return err
		}

		fmt.Println("Imported account:", account.Address)
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := wallet.NewWallet(walletPath())
		if err != nil {
			return err
		}

		defaultAccount, _ := w.GetDefaultAccount()
		for _, address := range w.ListAccounts() {
			marker := " "
			if defaultAccount != nil && address == defaultAccount.Address {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, address)
		}
		return nil
	},
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Query an address balance from the node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var result struct {
			Data struct {
				Address string  `json:"address"`
				Balance float64 `json:"balance"`
			} `json:"data"`
		}

		resp, err := apiClient().R().
			SetResult(&result).
			Get(fmt.Sprintf("/api/wallet/%s/balance", args[0]))
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("node returned %s: %s", resp.Status(), resp.String())
		}

		fmt.Printf("%s: %.2f KTA\n", result.Data.Address, result.Data.Balance)
		return nil
	},
}

var walletSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign a transfer locally and submit it to the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sendFrom == "" || sendTo == "" || sendAmount <= 0 {
			return fmt.Errorf("--from, --to and a positive --amount are required")
		}

		w, err := wallet.NewWallet(walletPath())
		if err != nil {
			return err
		}

		account, err := w.UnlockAccount(sendFrom, walletPassword)
		if err != nil {
			return err
		}

		tx, err := w.NewSignedTransaction(account, sendTo, sendAmount, sendData)
		if err != nil {
			return err
		}

		var result struct {
			Data struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"data"`
			Error string `json:"error"`
		}

		resp, err := apiClient().R().
			SetBody(tx).
			SetResult(&result).
			SetError(&result).
			Post("/api/transactions")
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("transaction rejected: %s", result.Error)
		}

		fmt.Println("Submitted transaction:", result.Data.ID)
		return nil
	},
}

func init() {
	walletCmd.PersistentFlags().StringVar(&walletPassword, "password", "", "Key file password")

	walletSendCmd.Flags().StringVar(&sendFrom, "from", "", "Sender address (must be in the wallet)")
	walletSendCmd.Flags().StringVar(&sendTo, "to", "", "Recipient address")
	walletSendCmd.Flags().Float64Var(&sendAmount, "amount", 0, "Amount to transfer")
	walletSendCmd.Flags().StringVar(&sendData, "data", "", "Opaque payload to attach")

	walletCmd.AddCommand(walletNewCmd)
	walletCmd.AddCommand(walletImportCmd)
	walletCmd.AddCommand(walletListCmd)
	walletCmd.AddCommand(walletBalanceCmd)
	walletCmd.AddCommand(walletSendCmd)
}
