package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/patrickfrey/strus-sub002/fetcher"
)

// CleanSegments removes duplicate document IDs from the segments
func CleanSegments(segments [][]fetcher.TermPosting) [][]fetcher.TermPosting {
	uniqueDocIDs := make(map[uint32]struct{})
	cleaned := make([][]fetcher.TermPosting, len(segments))

	for i, segment := range segments {
		uniqueDocs := []fetcher.TermPosting{}
		for _, doc := range segment {
			if _, exists := uniqueDocIDs[doc.DocID]; !exists {
				uniqueDocIDs[doc.DocID] = struct{}{}
				uniqueDocs = append(uniqueDocs, doc)
			}
		}
		cleaned[i] = uniqueDocs
	}

	return cleaned
}

// WriteJsonToFile writes the cleaned segments to a JSON file
func WriteJsonToFile(root fetcher.TermPostingRoot, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(root); err != nil {
		return fmt.Errorf("failed to write JSON to file: %w", err)
	}

	return nil
}

func main() {
	inputFilePath := flag.String("input", "", "Path to the input JSON file")
	outputFilePath := flag.String("output", "", "Path to the output JSON file")
	flag.Parse()

	if *inputFilePath == "" || *outputFilePath == "" {
		log.Fatalf("Both input and output file paths must be specified")
	}

	data, err := fetcher.FetchJson(*inputFilePath)
	if err != nil {
		log.Fatalf("Error fetching JSON: %v", err)
	}

	segments, err := fetcher.ParseTermPostings(data)
	if err != nil {
		log.Fatalf("Error parsing JSON: %v", err)
	}

	cleanedRoot := fetcher.TermPostingRoot{Segments: CleanSegments(segments)}

	if err := WriteJsonToFile(cleanedRoot, *outputFilePath); err != nil {
		log.Fatalf("Error writing cleaned JSON to file: %v", err)
	}

	fmt.Printf("Cleaned JSON file written successfully to: %s\n", *outputFilePath)
}
