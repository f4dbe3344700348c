// checkdb dumps or verifies the raw contents of a storage instance, the
// harness tool for spec §6.4 (whole-database dump) and §6.5 (per-document
// consistency check).
package main

import (
	"flag"
	"log"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/bytekv/boltdriver"
	"github.com/patrickfrey/strus-sub002/client"
	"github.com/patrickfrey/strus-sub002/storage"
)

const DefaultStorageConfig = "path=index-data;metadata=rank f32"

func main() {
	storageConfig := flag.String("storage", DefaultStorageConfig, "Storage configuration string (spec: path=...;metadata=...)")
	docno := flag.Uint("docno", 0, "If set, check this single document instead of dumping the whole store")
	attrName := flag.String("attribute", "", "Attribute name expected for -docno")
	attrValue := flag.String("value", "", "Attribute value expected for -docno")
	flag.Parse()

	st, err := openStorage(*storageConfig)
	if err != nil {
		log.Fatalf("Error opening storage: %v", err)
	}

	if *docno != 0 {
		checkDocument(st, uint32(*docno), *attrName, *attrValue)
		return
	}
	dump(st)
}

func dump(st *client.Storage) {
	it, err := st.DumpIterator()
	if err != nil {
		log.Fatalf("Error opening dump iterator: %v", err)
	}
	defer it.Close()

	for {
		entry, ok, err := it.Next()
		if err != nil {
			log.Fatalf("Error reading dump entry: %v", err)
		}
		if !ok {
			break
		}
		log.Printf("%s = %s", entry.Label, entry.Value)
	}
}

func checkDocument(st *client.Storage, docno uint32, attrName, attrValue string) {
	want := client.DocumentBuilder{}
	if attrName != "" {
		want.Attributes = map[string]string{attrName: attrValue}
	}
	mismatches, err := st.CheckDocument(docno, want, client.NewPrintfLog(log.Printf))
	if err != nil {
		log.Fatalf("Error checking document %d: %v", docno, err)
	}
	if mismatches == 0 {
		log.Printf("document %d: OK", docno)
	} else {
		log.Printf("document %d: %d mismatch(es)", docno, mismatches)
	}
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
