package api

type Post struct {
	ID        string   `json:"id"`
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Tags      []string `json:"tags"`
	Body      string   `json:"body"`
	Link      string   `json:"link"`
	CreatedAt string   `json:"created_at"`
	ChangedAt string   `json:"changed_at,omitempty"`
	Age       string   `json:"age"`
}

type PostLink struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type TagTitles struct {
	Tag    string   `json:"tag"`
	Titles []string `json:"titles"`
}

type ArchiveMonth struct {
	Month  string   `json:"month"`
	Titles []string `json:"titles"`
}

type Error struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type Health struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
