package main

import (
	"os"

	"github.com/spf13/cobra"

	"he-demo/cmd/play"
	"he-demo/cmd/serve"
	"he-demo/cmd/version"
	"he-demo/logging"
)

var rootCmd = &cobra.Command{
	Use:   "he-demo",
	Short: "Homomorphic encryption walkthrough demo.",
	Long: `he-demo simulates a CKKS homomorphic encryption workflow: values are
"encrypted", summed by a server that never sees plaintext, and decrypted
with the generated private key. All cryptography is cosmetic.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(play.Cmd)
	rootCmd.AddCommand(version.Cmd)

	if err := rootCmd.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
