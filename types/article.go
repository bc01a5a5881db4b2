package types

// NewsArticle is a single cleaned feed entry as served by the news API
type NewsArticle struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Summary   string `json:"summary"`
	Image     string `json:"image"`
}

// NewsResponse is the top-level wrapper for GET /news/
type NewsResponse struct {
	News []NewsArticle `json:"news"`
}
