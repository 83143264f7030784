package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benedoc-inc/graphbind/internal/envconfig"
	"github.com/benedoc-inc/graphbind/onnxruntime"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "graphbind version %s\n", Version)

			if envconfig.LibraryPath() == "" {
				fmt.Fprintln(w, "onnxruntime: not configured (set ONNXRUNTIME_LIB_PATH)")
				return nil
			}
			rt, err := onnxruntime.NewRuntime("", 0)
			if err != nil {
				fmt.Fprintf(w, "onnxruntime: unavailable: %v\n", err)
				return nil
			}
			defer rt.Close()

			fmt.Fprintf(w, "onnxruntime version %s\n", rt.GetVersionString())
			providers, err := rt.GetAvailableProviders()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "providers: %v\n", providers)
			return nil
		},
	}
}
