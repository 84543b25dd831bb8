// Package config provides the configuration of a gridframe session.
//
// # Sections
//
//   - Units: per-unit switch and base apparent power
//   - Dataframe: property column bound and missing row policy
//   - Export: file format and compression
//   - Observability: logging, metrics and tracing
//
// The engine never reads configuration globally. A session turns
// Units into a perunit.Context and Dataframe into filter limits on each
// call.
//
// # Usage
//
//	cfg, err := config.LoadFile("gridframe.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	ctx := cfg.Units.Context()
//
// # Environment Variable Substitution
//
// Values of the form ${VAR_NAME} are replaced before parsing:
//
//	units:
//	  per_unit: ${GRIDFRAME_PER_UNIT}
//	  nominal_apparent_power: 100
package config
