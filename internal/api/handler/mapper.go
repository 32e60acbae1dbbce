package handler

import (
	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

// --- Domain → Response ---

func toBlogResponse(b *domain.Blog, urlFor func(string) string) blogResponse {
	images := make([]imageResponse, len(b.Images))
	for i, key := range b.Images {
		images[i] = imageResponse{Key: key, URL: urlFor(key)}
	}
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return blogResponse{
		ID:        b.ID,
		Title:     b.Title,
		Content:   b.Content,
		Slug:      b.Slug,
		Category:  b.Category,
		Tags:      tags,
		Images:    images,
		Author:    authorResponse{ID: b.AuthorID, Role: b.AuthorRole},
		Excerpt:   b.Excerpt,
		Published: b.Published,
		Views:     b.Views,
		Likes:     b.Likes,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func toBlogListResponse(page *ports.BlogPage, urlFor func(string) string) blogListResponse {
	blogs := make([]blogResponse, len(page.Items))
	for i, b := range page.Items {
		blogs[i] = toBlogResponse(b, urlFor)
	}
	return blogListResponse{
		Blogs: blogs,
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
		Pages: page.TotalPages,
	}
}

func toUploadedFile(img domain.StoredImage) uploadedFile {
	return uploadedFile{
		URL:          img.URL,
		Filename:     img.Key,
		OriginalName: img.OriginalName,
		Size:         img.Size,
	}
}
