package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/yamitzky/xlsreader/xls"
)

var recordsUnnumbered bool

func init() {
	cmd := newRecordsCmd()
	cmd.Flags().BoolVarP(&recordsUnnumbered, "unnumbered", "u", false, "Omit offsets, for diffing dumps")
	rootCmd.AddCommand(cmd)
	rootCmd.AddCommand(newCountCmd())
}

func newRecordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "records <file>",
		Short: "Dump the BIFF records of the workbook stream",
		Long: `The records command prints each record of the workbook stream with its
offset, code, name and length, followed by a hex and character dump.

Example:
  xlsdump records report.xls
  xlsdump records report.xls -u > a.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecords(cmd.OutOrStdout(), args[0], recordsUnnumbered)
		},
	}
}

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <file>",
		Short: "Count the BIFF records of the workbook stream by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd.OutOrStdout(), args[0])
		},
	}
}

func runRecords(w io.Writer, path string, unnumbered bool) error {
	return xls.Dump(path, w, unnumbered)
}

func runCount(w io.Writer, path string) error {
	return xls.CountRecords(path, w)
}
