// Command mindcare-cli 在本地运行助手：查看话题目录、预览计划，或在内存存储上离线对话。
package main

import (
	"os"

	"github.com/spf13/cobra"
	"mindcare-go/pkg/log"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mindcare-cli",
		Short:         "Scripted mental-health assistant, offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.Init("debug", "console", "")
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print service logs to stdout")
	root.AddCommand(newTopicsCmd(), newPlanCmd(), newChatCmd())
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
