package testutil

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
)

// Boundary is one named edge case from spec.md §8/§9: an operation to
// perform and the errno (or "ok") it's expected to produce. Table-driven
// tests range over Boundaries instead of hardcoding the same cases inline,
// the way disks.go loads DiskGeometry rows instead of hardcoding geometries.
type Boundary struct {
	Name        string `csv:"name"`
	Operation   string `csv:"operation"`
	ExpectErrno string `csv:"expect_errno"`
}

//go:embed boundaries.csv
var boundariesRawCSV string

// Boundaries holds every row of boundaries.csv, keyed by Name.
var Boundaries map[string]Boundary

func init() {
	Boundaries = make(map[string]Boundary)
	reader := strings.NewReader(boundariesRawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Boundary) error {
		if _, exists := Boundaries[row.Name]; exists {
			return fmt.Errorf("duplicate boundary case %q", row.Name)
		}
		Boundaries[row.Name] = row
		return nil
	})
	if err != nil {
		panic(err)
	}
}
