// stats prints a per-term document-frequency report for a storage
// instance, the new-stack counterpart of the teacher's segment-file stats
// tool: instead of recomputing counts from raw JSON it reads them directly
// off the index via client.Storage's name iterators and DocumentFrequency.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/bytekv/boltdriver"
	"github.com/patrickfrey/strus-sub002/client"
	"github.com/patrickfrey/strus-sub002/storage"
)

const DefaultStorageConfig = "path=index-data;metadata=rank f32"

func main() {
	storageConfig := flag.String("storage", DefaultStorageConfig, "Storage configuration string (spec: path=...;metadata=...)")
	typeName := flag.String("type", "word", "Term type to report on")
	flag.Parse()

	st, err := openStorage(*storageConfig)
	if err != nil {
		log.Fatalf("Error opening storage: %v", err)
	}

	totalDocs, err := st.NofDocumentsInserted()
	if err != nil {
		log.Fatalf("Error reading document count: %v", err)
	}

	termIt, err := st.TermNameIterator()
	if err != nil {
		log.Fatalf("Error opening term iterator: %v", err)
	}
	defer termIt.Close()

	fmt.Printf("\n+============== Stats ===============\n\n")
	fmt.Printf("Total Documents: %d\n\n", totalDocs)
	fmt.Printf("%-15s\t%-15s\n", "Term", "Doc Frequency")
	fmt.Println(strings.Repeat("-", 30))

	var distinctTerms int
	for {
		entry, ok, err := termIt.Next()
		if err != nil {
			log.Fatalf("Error walking term dictionary: %v", err)
		}
		if !ok {
			break
		}
		distinctTerms++
		df, err := st.DocumentFrequency(*typeName, entry.Name)
		if err != nil {
			log.Fatalf("Error reading document frequency for %q: %v", entry.Name, err)
		}
		fmt.Printf("%-15s\t%-15d\n", entry.Name, df)
	}

	fmt.Printf("\nTotal Terms: %d\n\n", distinctTerms)
}

func openStorage(configString string) (*client.Storage, error) {
	cfg, err := bytekv.ParseConfig(configString)
	if err != nil {
		return nil, err
	}
	cols, err := bytekv.ParseMetadataColumns(cfg.Metadata)
	if err != nil {
		return nil, err
	}
	drv, err := boltdriver.Open(cfg)
	if err != nil {
		return nil, err
	}
	schema := storage.MetadataSchema{Columns: cols}
	return client.Open(schema, client.Config{Driver: drv})
}
