package application

import "context"

const archiveLabelLayout = "January 2006"

// ArchiveMonth holds the titles published in one calendar month
type ArchiveMonth struct {
	Label  string
	Titles []string
}

// MonthsAndYears buckets published titles by UTC month, newest month first
func (s *PostService) MonthsAndYears(ctx context.Context) ([]ArchiveMonth, error) {
	posts, err := s.repo.FindPublished(ctx)
	if err != nil {
		return nil, err
	}

	months := make([]ArchiveMonth, 0)
	index := make(map[string]int)
	for _, p := range posts {
		label := p.CreatedAt.UTC().Format(archiveLabelLayout)
		i, ok := index[label]
		if !ok {
			i = len(months)
			index[label] = i
			months = append(months, ArchiveMonth{Label: label})
		}
		months[i].Titles = append(months[i].Titles, p.Title)
	}
	return months, nil
}
