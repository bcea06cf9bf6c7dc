// Package model defines the records stored in a site.
package model

// Entity is a content record (post, page, report, ...) identified by an integer ID.
type Entity struct {
	ID int64 `json:"id"`

	// Type is the post type the entity belongs to (e.g., "post", "report").
	Type string `json:"type"`

	Status  string `json:"status"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`

	// FeaturedImage is the attachment ID of the featured image, 0 when unset.
	FeaturedImage int64 `json:"featured_image,omitempty"`
}

// Default entity status for newly created records.
const StatusPublish = "publish"

// Term is an entry in a taxonomy vocabulary.
// Slug is the stable key used to match terms across taxonomies.
type Term struct {
	ID       int64  `json:"id"`
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Parent   int64  `json:"parent,omitempty"`
}
