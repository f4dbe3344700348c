// create-index ingests a term-posting JSON document into a storage
// instance, the new-stack counterpart of the teacher's segment-file
// builder: instead of writing standalone segment.bin files it opens a
// client.Storage and commits the postings straight into it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/bytekv/boltdriver"
	"github.com/patrickfrey/strus-sub002/client"
	"github.com/patrickfrey/strus-sub002/fetcher"
	"github.com/patrickfrey/strus-sub002/storage"
)

const DefaultStorageConfig = "path=index-data;metadata=rank f32"

func main() {
	jsonInputFile, exists := os.LookupEnv("JSON_INPUT_FILE")
	if !exists {
		jsonInputFile = "https://storage.googleapis.com/weaviate-tech-challenges/db-engineer/segments.json"
	}
	storageConfig := flag.String("storage", DefaultStorageConfig, "Storage configuration string (spec: path=...;metadata=...)")
	typeName := flag.String("type", "word", "Term type every ingested posting is registered under")
	flag.Parse()

	fmt.Printf("Reading file: %s\n", jsonInputFile)

	data, err := fetcher.FetchJson(jsonInputFile)
	if err != nil {
		fmt.Printf("Error fetching JSON: %v\n", err)
		return
	}

	segments, err := fetcher.ParseTermPostings(data)
	if err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}
	fmt.Printf("Processing %d segments\n", len(segments))

	st, err := openStorage(*storageConfig)
	if err != nil {
		fmt.Printf("Error opening storage: %v\n", err)
		return
	}

	tx := st.NewTransaction()
	if err := fetcher.IngestSegments(tx, *typeName, segments); err != nil {
		fmt.Printf("Error staging documents: %v\n", err)
		return
	}
	if err := st.Commit(tx); err != nil {
		fmt.Printf("Error committing index: %v\n", err)
		return
	}

	max, err := st.MaxDocumentNumber()
	if err != nil {
		fmt.Printf("Error reading document count: %v\n", err)
		return
	}
	fmt.Printf("Index created successfully: %d documents indexed.\n", max)
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
