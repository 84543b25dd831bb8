package config_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gridframe/gridframe/pkg/config"
)

// ExampleNewDefault demonstrates the default configuration.
func ExampleNewDefault() {
	cfg := config.NewDefault()

	fmt.Printf("Per unit: %v\n", cfg.Units.PerUnit)
	fmt.Printf("Base power: %.0f MVA\n", cfg.Units.NominalApparentPower)
	fmt.Printf("Max property columns: %d\n", cfg.Dataframe.MaxPropertyColumns)

	// Output:
	// Per unit: false
	// Base power: 100 MVA
	// Max property columns: 1000
}

// ExampleConfig_Validate shows how to validate a configuration
// before using it.
func ExampleConfig_Validate() {
	cfg := config.NewDefault()
	cfg.Export.Format = "parquet"

	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
	}

	// Output:
	// config: unsupported export format "parquet"
}

// ExampleLoadFile demonstrates loading configuration from a YAML file
// with environment variable substitution.
func ExampleLoadFile() {
	dir, err := os.MkdirTemp("", "gridframe-config")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	os.Setenv("GRIDFRAME_BASE_MVA", "250")
	path := filepath.Join(dir, "gridframe.yaml")
	yaml := "units:\n  per_unit: true\n  nominal_apparent_power: ${GRIDFRAME_BASE_MVA}\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	ctx := cfg.Units.Context()
	fmt.Printf("Per unit: %v, base %.0f MVA\n", ctx.PerUnit, ctx.NominalApparentPower)
	fmt.Printf("Export format: %s\n", cfg.Export.Format)

	// Output:
	// Per unit: true, base 250 MVA
	// Export format: csv
}
