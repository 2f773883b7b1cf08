package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bakesub/internal/config"
	"bakesub/internal/db"
	"bakesub/internal/slug"
	"bakesub/models"
)

var cleanWhitespace = regexp.MustCompile(`\s+`)

func main() {
	csvPath := "ingredients.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	imported := 0
	for idx, record := range records {
		if err := database.Transaction(func(tx *gorm.DB) error {
			ingredient, err := buildIngredient(record)
			if err != nil {
				return err
			}

			var existing models.Ingredient
			err = tx.Where("slug = ?", ingredient.Slug).First(&existing).Error
			switch {
			case err == nil:
				updates := map[string]any{
					"name":          ingredient.Name,
					"category":      ingredient.Category,
					"functions":     ingredient.Functions,
					"common_uses":   ingredient.CommonUses,
					"dietary_flags": ingredient.DietaryFlags,
					"allergens":     ingredient.Allergens,
					"default_unit":  ingredient.DefaultUnit,
					"notes":         ingredient.Notes,
				}
				if ingredient.ImageURL != "" {
					updates["image_url"] = ingredient.ImageURL
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return fmt.Errorf("update ingredient %q: %w", ingredient.Slug, err)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&ingredient).Error; err != nil {
					return fmt.Errorf("create ingredient %q: %w", ingredient.Slug, err)
				}
			default:
				return fmt.Errorf("find ingredient %q: %w", ingredient.Slug, err)
			}

			return nil
		}); err != nil {
			return fmt.Errorf("record %d (%s): %w", idx+1, record["Name"], err)
		}
		imported++
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredients from %s\n", imported, filepath.Base(csvPath))
	return nil
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[key] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

func buildIngredient(row map[string]string) (models.Ingredient, error) {
	name := normalizeText(row["Name"])
	if name == "" {
		return models.Ingredient{}, errors.New("name column is empty")
	}

	id := slug.Make(name)
	if id == "" {
		return models.Ingredient{}, fmt.Errorf("name %q yields an empty slug", name)
	}

	return models.Ingredient{
		Slug:         id,
		Name:         name,
		Category:     normalizeText(row["Category"]),
		Functions:    datatypes.NewJSONSlice(splitList(row["Functions"])),
		CommonUses:   datatypes.NewJSONSlice(splitList(row["Common Uses"])),
		DietaryFlags: datatypes.NewJSONSlice(splitList(row["Dietary Flags"])),
		Allergens:    datatypes.NewJSONSlice(splitList(row["Allergens"])),
		DefaultUnit:  models.NormalizeUnit(row["Default Unit"]),
		Notes:        normalizeText(row["Notes"]),
		ImageURL:     strings.TrimSpace(row["Image URL"]),
	}, nil
}

func normalizeText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return strings.TrimSpace(cleanWhitespace.ReplaceAllString(value, " "))
}

// splitList parses a semicolon-separated cell into a deduplicated,
// order-preserving list.
func splitList(value string) []string {
	value = normalizeText(value)
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ";")
	result := make([]string, 0, len(parts))
	seen := map[string]struct{}{}
	for _, part := range parts {
		clean := strings.ToLower(strings.TrimSpace(part))
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		result = append(result, clean)
	}
	return result
}
