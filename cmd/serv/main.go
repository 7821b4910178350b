package main

import (
	"log"

	"github.com/spf13/cobra"

	"tradebook/internal"
)

var (
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "tradebook",
	Short: "Tradebook - day-trade journal with exit reconciliation and plan adherence",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		return internal.Run(configFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
