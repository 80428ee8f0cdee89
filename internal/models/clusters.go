package models

// ClusterCacheEntry is the persisted unit produced by one clustering run:
// per-book assignments, per-cluster labels, and the catalog copy with
// cluster ids attached. The three parts are written together atomically and
// are never partially updated; Books[i].ClusterID always equals Assignments[i]
// at time of creation.
type ClusterCacheEntry struct {
	Assignments []int          `json:"assignments"`
	Labels      map[int]string `json:"labels"`
	Books       []Book         `json:"books"`
}

// ClusterSummary is the API shape for one cluster in listings.
type ClusterSummary struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Size  int    `json:"size"`
}

// ListClustersResponse is the response for listing clusters.
type ListClustersResponse struct {
	Data  []ClusterSummary `json:"data"`
	Total int              `json:"total"`
}

// ClusterBooksResponse is the response for listing the books of one cluster.
type ClusterBooksResponse struct {
	ClusterID int    `json:"cluster_id"`
	Label     string `json:"label"`
	Data      []Book `json:"data"`
	Total     int    `json:"total"`
}
