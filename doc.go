// Package gridframe exposes the elements of a power grid network as
// columnar dataframes and applies bulk attribute updates back to them.
//
// Each element type (buses, generators, loads, lines and two windings
// transformers) is described by a mapper that lists its series: typed
// columns with index, modifiable and default flags. A read walks the
// selected elements once and streams every series into a handler, which
// decides where the values land. An update takes any table of typed
// columns keyed by element id and writes the modifiable attributes.
//
// Values can be read and written in raw engineering units or per-unit,
// relative to a nominal apparent power and the nominal voltage of each
// element.
//
// # Quick Start
//
//	n, _ := network.LoadFile("grid.json")
//	m := mappers.MustFor(mappers.Generator)
//
//	c, _ := m.Collect(n, dataframe.Attributes("target_p", "target_v"), perunit.NewContext(true, 100))
//	_ = export.Write(os.Stdout, c.Series(), export.Options{Format: export.FormatCSV})
//
//	update := dataframe.NewTable(1).
//	    Strings("id", []string{"GEN1"}).
//	    Doubles("target_p", []float64{5.5}).
//	    MustBuild()
//	_, _ = m.Update(n, update, perunit.NewContext(true, 100))
//
// # Key Packages
//
//	pkg/dataframe     - Series metadata, filters, handlers and the generic mapper engine
//	pkg/mappers       - Mappers for every network element type
//	pkg/network       - In-memory grid model with JSON and YAML files
//	pkg/perunit       - Per-unit conversions
//	pkg/native        - C memory layout for the shared library
//	pkg/arrowframe    - Arrow records and IPC streams
//	pkg/export        - CSV, JSON and Arrow export, CSV update tables
//	pkg/compression   - Stream compression codecs
//	pkg/config        - Configuration loading and validation
//	pkg/logger        - Structured logging with zap
//	pkg/metrics       - Prometheus collectors
//	pkg/observability - OpenTelemetry tracing
//	internal/session  - Serialized, instrumented access to one network
//
// # Binaries
//
//	cmd/gridframe     - Command line interface
//	cmd/libgridframe  - C shared library (go build -buildmode=c-shared)
package gridframe
