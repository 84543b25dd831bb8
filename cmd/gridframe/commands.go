package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gridframe/gridframe/internal/session"
	"github.com/gridframe/gridframe/pkg/arrowframe"
	"github.com/gridframe/gridframe/pkg/compression"
	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/export"
	"github.com/gridframe/gridframe/pkg/mappers"
	"github.com/gridframe/gridframe/pkg/native"
)

func newElementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "elements",
		Short: "List element types and their native codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tELEMENT TYPE")
			for _, et := range mappers.ElementTypes() {
				code, err := native.ElementTypeCodes.Code(et)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%d\t%s\n", code, et)
			}
			return w.Flush()
		},
	}
}

func newSeriesCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "series <ELEMENT_TYPE>",
		Short: "Describe the series of an element type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			et, err := parseElementType(args[0])
			if err != nil {
				return err
			}
			meta, err := session.New(nil, configFrom(cmd)).Series(et)
			if err != nil {
				return err
			}
			if format == "csv" {
				return writeSeriesCSV(cmd.OutOrStdout(), meta)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tINDEX\tMODIFIABLE\tDEFAULT")
			for _, m := range meta {
				fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%v\n", m.Name, m.Type, m.Index, m.Modifiable, m.Default)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table, csv)")
	return cmd
}

// writeSeriesCSV describes series as a dataframe of its own.
func writeSeriesCSV(w io.Writer, meta []dataframe.SeriesMetadata) error {
	c := dataframe.NewCollector()
	c.SetSeriesCount(5)
	names := c.AddStringSeries(dataframe.SeriesMetadata{Name: "name", Type: dataframe.SeriesTypeString, Index: true}, len(meta))
	types := c.AddStringSeries(dataframe.SeriesMetadata{Name: "type", Type: dataframe.SeriesTypeString}, len(meta))
	index := c.AddBooleanSeries(dataframe.SeriesMetadata{Name: "index", Type: dataframe.SeriesTypeBoolean}, len(meta))
	modifiable := c.AddBooleanSeries(dataframe.SeriesMetadata{Name: "modifiable", Type: dataframe.SeriesTypeBoolean}, len(meta))
	def := c.AddBooleanSeries(dataframe.SeriesMetadata{Name: "default", Type: dataframe.SeriesTypeBoolean}, len(meta))
	for i, m := range meta {
		names.Set(i, m.Name)
		types.Set(i, m.Type.String())
		index.Set(i, m.Index)
		modifiable.Set(i, m.Modifiable)
		def.Set(i, m.Default)
	}
	return export.WriteCSV(w, c.Series())
}

func newGetCmd() *cobra.Command {
	var (
		networkFile string
		attributes  []string
		all         bool
		ids         []string
		skipMissing bool
		format      string
		algorithm   string
		arrowCodec  string
		output      string
	)
	cmd := &cobra.Command{
		Use:   "get <ELEMENT_TYPE>",
		Short: "Export elements of a network as a dataframe",
		Long: `Export elements of one type as columns.

Without --attributes only default series are exported, --all adds every
series and the property columns. --ids restricts and orders the rows.

Example:
  gridframe get GENERATOR --network grid.json --attributes target_p,target_v --per-unit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			et, err := parseElementType(args[0])
			if err != nil {
				return err
			}
			cfg := configFrom(cmd)
			s, err := session.Open(networkFile, cfg)
			if err != nil {
				return err
			}

			f := dataframe.DefaultAttributes()
			switch {
			case all && len(attributes) > 0:
				return errors.InvalidValue("--all and --attributes are mutually exclusive")
			case all:
				f = dataframe.AllAttributes()
			case len(attributes) > 0:
				f = dataframe.Attributes(attributes...)
			}
			if len(ids) > 0 {
				sel, err := dataframe.NewTable(len(ids)).Strings(dataframe.IDColumn, ids).Build()
				if err != nil {
					return err
				}
				f = f.WithSelection(sel)
			}
			if cmd.Flags().Changed("skip-missing") {
				cfg.Dataframe.SkipMissingRows = skipMissing
			}

			opts, err := exportOptions(cfg.Export.Format, cfg.Export.Compression, format, algorithm, arrowCodec, output, cmd)
			if err != nil {
				return err
			}
			opts.Level = compression.Level(cfg.Export.Level)

			c, err := s.Collect(cmd.Context(), et, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create output file").WithDetail("path", output)
				}
				defer file.Close()
				out = file
			}
			return export.Write(out, c.Series(), opts)
		},
	}
	cmd.Flags().StringVarP(&networkFile, "network", "n", "", "Path to the network file (json or yaml, required)")
	cmd.Flags().StringSliceVarP(&attributes, "attributes", "a", nil, "Comma separated series names")
	cmd.Flags().BoolVar(&all, "all", false, "Export every series and property column")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "Comma separated element ids to export, in order")
	cmd.Flags().BoolVar(&skipMissing, "skip-missing", false, "Skip --ids that are not in the network")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (csv, json, arrow)")
	cmd.Flags().StringVar(&algorithm, "compression", "", "Compression (none, gzip, zstd, lz4, snappy, s2, deflate)")
	cmd.Flags().StringVar(&arrowCodec, "arrow-codec", "", "Arrow IPC body compression (none, lz4, zstd)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, stdout when empty")
	_ = cmd.MarkFlagRequired("network")
	return cmd
}

// exportOptions resolves the export flags over the configured defaults.
// Compression is guessed from the output suffix when neither sets it.
func exportOptions(cfgFormat, cfgCompression, format, algorithm, arrowCodec, output string, cmd *cobra.Command) (export.Options, error) {
	if !cmd.Flags().Changed("format") {
		format = cfgFormat
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return export.Options{}, err
	}
	if !cmd.Flags().Changed("compression") {
		algorithm = cfgCompression
	}
	a, err := compression.Parse(algorithm)
	if err != nil {
		return export.Options{}, err
	}
	if a == compression.None && output != "" {
		a = compression.FromPath(output)
	}
	codec, err := arrowframe.ParseCodec(arrowCodec)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{Format: f, Compression: a, ArrowCodec: codec}, nil
}

func newUpdateCmd() *cobra.Command {
	var networkFile, inputFile, out string
	cmd := &cobra.Command{
		Use:   "update <ELEMENT_TYPE>",
		Short: "Apply a CSV update table to a network",
		Long: `Apply a CSV update table to elements of one type and save the network.

The table needs an id column. Empty cells leave the attribute untouched.
Rows apply in order and a later row for the same id wins. When a value is
rejected the rows before it stay applied and the network is not saved.

Example:
  gridframe update LOAD --network grid.json --file loads.csv --out grid-updated.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			et, err := parseElementType(args[0])
			if err != nil {
				return err
			}
			s, err := session.Open(networkFile, configFrom(cmd))
			if err != nil {
				return err
			}
			m, err := mappers.For(et)
			if err != nil {
				return err
			}

			file, err := os.Open(inputFile)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeNotFound, "failed to open update file").WithDetail("path", inputFile)
			}
			defer file.Close()
			r, err := compression.NewReader(file, compression.FromPath(inputFile))
			if err != nil {
				return err
			}
			defer r.Close()

			table, err := export.ReadCSV(r, m.Series)
			if err != nil {
				return err
			}
			rows, err := s.Update(cmd.Context(), et, table)
			if err != nil {
				return err
			}

			if out == "" {
				out = networkFile
			}
			if err := s.Save(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d %s rows, saved %s\n", rows, strings.ToLower(et.String()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&networkFile, "network", "n", "", "Path to the network file (required)")
	cmd.Flags().StringVar(&inputFile, "file", "", "CSV update table, optionally compressed (required)")
	cmd.Flags().StringVar(&out, "out", "", "Where to save the updated network, the input network when empty")
	_ = cmd.MarkFlagRequired("network")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// parseElementType accepts element type names in any case.
func parseElementType(name string) (mappers.ElementType, error) {
	return mappers.ParseElementType(strings.ToUpper(name))
}
