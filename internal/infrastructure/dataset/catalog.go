// Package dataset knows the Amazon-Reviews-2023 category catalog, its
// on-disk layout, and how to fetch category files from the upstream
// repository.
package dataset

import "path/filepath"

// Categories lists every review category the upstream dataset publishes.
var Categories = []string{
	"All_Beauty",
	"Amazon_Fashion",
	"Appliances",
	"Arts_Crafts_and_Sewing",
	"Automotive",
	"Baby_Products",
	"Beauty_and_Personal_Care",
	"Books",
	"CDs_and_Vinyl",
	"Cell_Phones_and_Accessories",
	"Clothing_Shoes_and_Jewelry",
	"Digital_Music",
	"Electronics",
	"Gift_Cards",
	"Grocery_and_Gourmet_Food",
	"Handmade_Products",
	"Health_and_Household",
	"Health_and_Personal_Care",
	"Home_and_Kitchen",
	"Industrial_and_Scientific",
	"Kindle_Store",
	"Magazine_Subscriptions",
	"Movies_and_TV",
	"Musical_Instruments",
	"Office_Products",
	"Patio_Lawn_and_Garden",
	"Pet_Supplies",
	"Software",
	"Sports_and_Outdoors",
	"Subscription_Boxes",
	"Tools_and_Home_Improvement",
	"Toys_and_Games",
	"Video_Games",
	"Unknown",
}

// IsCategory reports whether name is a known review category.
func IsCategory(name string) bool {
	for _, cat := range Categories {
		if cat == name {
			return true
		}
	}
	return false
}

// ReviewFile returns the local path of a category's review JSONL under the
// dataset root, mirroring the upstream repository layout.
func ReviewFile(dataDir, category string) string {
	return filepath.Join(dataDir, "raw", "review_categories", category+".jsonl")
}

// MetaFile returns the local path of a category's product metadata JSONL.
func MetaFile(dataDir, category string) string {
	return filepath.Join(dataDir, "raw", "meta_categories", "meta_"+category+".jsonl")
}
