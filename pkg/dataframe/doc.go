// Package dataframe projects typed entities into named columns and applies
// column-oriented bulk updates back to them.
//
// A Mapper is built once per entity type from a MapperBuilder that lists
// the series of that type as getter and setter closures:
//
//	m := dataframe.NewMapperBuilder[*Grid, *Gen]("GENERATOR", allGens, dataframe.ByID("GENERATOR", genByID)).
//	    StringsIndex("id", (*Gen).ID).
//	    Doubles("target_p", getTargetP, setTargetP).
//	    Booleans("voltage_regulator_on", (*Gen).Regulating, nil, dataframe.NotDefault()).
//	    MustBuild()
//
// Reads go through Materialize, which narrows columns and rows with a
// Filter and pushes each column into a Handler. Collector is the in-memory
// Handler; other packages provide Arrow and native C handlers.
//
// Writes go through Update, which reads an UpdatingDataframe. Table is the
// in-memory implementation; a Collector can be fed back as input as well.
//
// The package holds no global state. Per-unit conversion is driven only by
// the perunit.Context passed to each call.
package dataframe
