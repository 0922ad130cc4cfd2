// Command buildplaceindex reads a gazetteer CSV (key,lat,lon) and writes
// the flattened, serialized placeindex.Index blob the server and CLI load
// at startup.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"hikefly/pkg/placeindex"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "places.csv", "gazetteer CSV: key,lat,lon")
	out := flag.String("out", "places.bin", "output path for the serialized index")
	flag.Parse()

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("opening gazetteer: %w", err)
	}
	defer f.Close()

	b := placeindex.NewBuilder()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	count := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading gazetteer row %d: %w", count+1, err)
		}
		if len(row) < 3 {
			continue
		}
		lat, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			continue
		}
		b.Insert(row[0], placeindex.Record{Lat: lat, Lon: lon})
		count++
	}

	idx := b.Finalize()

	outFile, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer outFile.Close()

	if err := idx.Serialize(outFile); err != nil {
		return fmt.Errorf("serializing index: %w", err)
	}

	fmt.Printf("wrote %d places to %s\n", count, *out)
	return nil
}
