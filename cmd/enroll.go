package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/facegate/canteen/internal/config"
	"github.com/facegate/canteen/internal/database"
	"github.com/facegate/canteen/internal/database/postgres"
	"github.com/facegate/canteen/internal/recognition"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Build the recognition gallery from enrollment images",
	Long: `Enroll scans a directory of per-person subdirectories, extracts a
128D descriptor from every usable image, averages them into one reference
descriptor per person, and writes the gallery to the features table.

Images without a detectable face are skipped with a log message; a person
whose images all fail is kept with a zero descriptor and will never match.`,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("dir", "data/faces", "Directory with one subdirectory of images per person")
	enrollCmd.Flags().String("csv", "", "Also export the gallery to a CSV file (label + 128 values per row)")
}

// labelFromDir derives the identity label from an enrollment directory
// name: "person_1_Alice Smith" becomes "Alice Smith", plain names pass
// through unchanged.
func labelFromDir(name string) string {
	if !strings.Contains(name, "_") {
		return name
	}
	parts := strings.SplitN(name, "_", 3)
	return parts[len(parts)-1]
}

// loadEnrollmentSets reads every person directory into memory, sorted by
// directory name so rebuilds are deterministic.
func loadEnrollmentSets(dir string) ([]recognition.PersonImages, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading enrollment directory %s: %w", dir, err)
	}

	var people []recognition.PersonImages
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		personDir := filepath.Join(dir, e.Name())
		images, err := os.ReadDir(personDir)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", personDir, err)
		}

		person := recognition.PersonImages{Label: labelFromDir(e.Name())}
		for _, img := range images {
			if img.IsDir() {
				continue
			}
			path := filepath.Join(personDir, img.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
			person.Images = append(person.Images, recognition.NamedImage{Name: path, Data: data})
		}
		people = append(people, person)
	}

	sort.Slice(people, func(i, j int) bool { return people[i].Label < people[j].Label })
	return people, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	dir := mustGetString(cmd, "dir")
	csvPath := mustGetString(cmd, "csv")

	people, err := loadEnrollmentSets(dir)
	if err != nil {
		return err
	}
	if len(people) == 0 {
		return fmt.Errorf("no person directories found under %s", dir)
	}

	extractor, err := recognition.NewExtractor(cfg.Recognition.ModelsDir, cfg.Recognition.MaxEdge)
	if err != nil {
		return err
	}
	defer extractor.Close()

	bar := progressbar.Default(int64(len(people)), "enrolling")
	var gallery recognition.Gallery
	for _, person := range people {
		part := recognition.BuildGallery(extractor, []recognition.PersonImages{person})
		gallery = append(gallery, part...)
		bar.Add(1)
	}
	recognition.SortGallery(gallery)

	features := make([]database.StoredFeature, len(gallery))
	for i, entry := range gallery {
		features[i] = database.StoredFeature{
			Label:  entry.Label,
			Vector: entry.Descriptor.Slice(),
		}
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.NewFeatureRepository(pool).ReplaceFeatures(context.Background(), features); err != nil {
		return err
	}
	fmt.Printf("Enrolled %d identities into the features table\n", len(features))

	if csvPath != "" {
		if err := exportGalleryCSV(csvPath, gallery); err != nil {
			return err
		}
		fmt.Printf("Exported gallery to %s\n", csvPath)
	}
	return nil
}

// exportGalleryCSV writes the gallery in the legacy features_all.csv
// layout: a label column followed by the 128 feature columns.
func exportGalleryCSV(path string, gallery recognition.Gallery) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	header := make([]string, 1+recognition.DescriptorDim)
	header[0] = "label"
	for i := 0; i < recognition.DescriptorDim; i++ {
		header[i+1] = strconv.Itoa(i)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, entry := range gallery {
		row := make([]string, 1+recognition.DescriptorDim)
		row[0] = entry.Label
		for i, v := range entry.Descriptor {
			row[i+1] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for %s: %w", entry.Label, err)
		}
	}
	return nil
}
