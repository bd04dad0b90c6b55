package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yangyining/jots/construction"
	"github.com/yangyining/jots/mib"
	"github.com/yangyining/jots/smi"
)

var mibCmd = &cobra.Command{
	Use:   "mib",
	Short: "Render the MIB definition of the demo status tree",
	RunE:  runMib,
}

func init() {
	mibCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(mibCmd)
}

func runMib(cmd *cobra.Command, _ []string) error {
	prefix, err := smi.ParseOid(viper.GetString("prefix"))
	if err != nil {
		return fmt.Errorf("bad prefix: %w", err)
	}

	doc := &mib.Document{Module: "JOTS-STATUS-MIB", Root: "jotsStatus"}
	if _, err := construction.Build(newSystemStatus(), prefix, construction.WithMib(doc)); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return doc.Write(out)
}
