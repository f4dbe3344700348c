// query runs a multi-term BM25 query against an index built by
// create-index, the new-stack counterpart of the teacher's segment-file
// query tool: instead of loading .bin segments and an in-memory
// QueryEngine, it opens a client.Storage directly and drives a
// rank.Accumulator over its term iterators.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/patrickfrey/strus-sub002/bytekv"
	"github.com/patrickfrey/strus-sub002/bytekv/boltdriver"
	"github.com/patrickfrey/strus-sub002/client"
	"github.com/patrickfrey/strus-sub002/query"
	"github.com/patrickfrey/strus-sub002/rank"
	"github.com/patrickfrey/strus-sub002/storage"
)

const DefaultStorageConfig = "path=index-data;metadata=rank f32"

func main() {
	storageConfig := flag.String("storage", DefaultStorageConfig, "Storage configuration string (spec: path=...;metadata=...)")
	typeName := flag.String("type", "word", "Term type to query")
	k := flag.Int("k", 10, "Number of results to return")
	flag.Parse()

	st, err := openStorage(*storageConfig)
	if err != nil {
		fmt.Printf("Error opening storage: %v\n", err)
		return
	}

	queryText := getQuery()
	terms := strings.Fields(queryText)
	fmt.Printf("Query: %s\n", queryText)
	fmt.Printf("Terms: %v\n", terms)

	maxDoc, err := st.MaxDocumentNumber()
	if err != nil {
		fmt.Printf("Error reading document count: %v\n", err)
		return
	}

	var selectors []query.Iterator
	var weights []rank.WeightTerm
	for _, term := range terms {
		it, err := st.TermIterator(*typeName, term)
		if err != nil {
			fmt.Printf("Error resolving term %q: %v\n", term, err)
			return
		}
		selectors = append(selectors, it)
		weights = append(weights, rank.WeightTerm{
			Iterator: it,
			Weighting: &rank.BM25Weighting{
				K1:        1.2,
				B:         0.75,
				Avgdl:     1,
				TotalDocs: int(maxDoc),
			},
			Factor: 1,
		})
	}
	if len(selectors) == 0 {
		fmt.Println("No query terms given.")
		return
	}

	acc := rank.Accumulator{Selectors: selectors, Weights: weights}
	ranker := rank.NewTopKRanker(*k)
	visited, ranked, err := acc.Run(ranker)
	if err != nil {
		fmt.Printf("Query execution failed: %v\n", err)
		return
	}

	fmt.Printf("Visited %d documents, ranked %d\n", visited, ranked)
	printResults(ranker.Result(0))
}

func getQuery() string {
	q, exists := os.LookupEnv("QUERY")
	if !exists {
		q = "great vector database"
	}
	return q
}

func printResults(results []rank.ScoredDoc) {
	fmt.Printf("Scored documents: %d\n", len(results))
	fmt.Println(strings.Repeat("-", 22))
	fmt.Printf("| %-8s | %-8s |\n", "DocNo", "Score")
	fmt.Println(strings.Repeat("-", 22))
	for _, doc := range results {
		fmt.Printf("| %-8d | %8.2f |\n", doc.Docno, doc.Weight)
	}
	fmt.Println(strings.Repeat("-", 22))
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
