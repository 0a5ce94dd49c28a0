package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/baikerank/feature"
)

func newExtractorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extractors",
		Short: "List the registered feature extractors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// 只列名称，不需要打开实体库
			reg := feature.NewRegistry(feature.Builtins(nil)...)
			for _, name := range reg.Names() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
