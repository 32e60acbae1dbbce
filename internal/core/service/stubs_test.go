package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/blogcms/cms-api/internal/core/domain"
	"github.com/blogcms/cms-api/internal/core/ports"
)

type stubBlogRepo struct {
	mu    sync.Mutex
	blogs map[string]*domain.Blog
	seq   int
	// writeErrs are returned, in order, by Insert and Update before they
	// fall back to normal behaviour.
	writeErrs []error
	// likeErrs are returned, in order, by IncrementLikes.
	likeErrs  []error
	listed    []ports.BlogFilter
}

func newStubBlogRepo() *stubBlogRepo {
	return &stubBlogRepo{blogs: make(map[string]*domain.Blog)}
}

func cloneBlog(b *domain.Blog) *domain.Blog {
	c := *b
	c.Tags = append([]string(nil), b.Tags...)
	c.Images = append([]string(nil), b.Images...)
	return &c
}

func (r *stubBlogRepo) nextWriteErr() error {
	if len(r.writeErrs) == 0 {
		return nil
	}
	err := r.writeErrs[0]
	r.writeErrs = r.writeErrs[1:]
	return err
}

func (r *stubBlogRepo) slugOwner(slug string) string {
	for id, b := range r.blogs {
		if b.Slug == slug {
			return id
		}
	}
	return ""
}

func (r *stubBlogRepo) Insert(_ context.Context, b *domain.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.nextWriteErr(); err != nil {
		return err
	}
	if r.slugOwner(b.Slug) != "" {
		return domain.ErrSlugTaken
	}
	r.seq++
	b.ID = fmt.Sprintf("blog-%d", r.seq)
	r.blogs[b.ID] = cloneBlog(b)
	return nil
}

func (r *stubBlogRepo) FindByID(_ context.Context, id string) (*domain.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.blogs[id]
	if !ok {
		return nil, domain.ErrBlogNotFound
	}
	return cloneBlog(b), nil
}

func (r *stubBlogRepo) FindBySlugAndCountView(_ context.Context, slug string, includeDrafts bool) (*domain.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.slugOwner(slug)
	if id == "" {
		return nil, domain.ErrBlogNotFound
	}
	b := r.blogs[id]
	if !b.Published && !includeDrafts {
		return nil, domain.ErrBlogNotFound
	}
	b.Views++
	return cloneBlog(b), nil
}

func (r *stubBlogRepo) List(_ context.Context, f ports.BlogFilter) ([]*domain.Blog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listed = append(r.listed, f)

	var all []*domain.Blog
	for _, b := range r.blogs {
		if f.Published != nil && b.Published != *f.Published {
			continue
		}
		if f.AuthorID != "" && b.AuthorID != f.AuthorID {
			continue
		}
		all = append(all, cloneBlog(b))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (f.Page - 1) * f.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *stubBlogRepo) Update(_ context.Context, b *domain.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.nextWriteErr(); err != nil {
		return err
	}
	if _, ok := r.blogs[b.ID]; !ok {
		return domain.ErrBlogNotFound
	}
	if owner := r.slugOwner(b.Slug); owner != "" && owner != b.ID {
		return domain.ErrSlugTaken
	}
	r.blogs[b.ID] = cloneBlog(b)
	return nil
}

func (r *stubBlogRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blogs[id]; !ok {
		return domain.ErrBlogNotFound
	}
	delete(r.blogs, id)
	return nil
}

func (r *stubBlogRepo) IncrementLikes(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.likeErrs) > 0 {
		err := r.likeErrs[0]
		r.likeErrs = r.likeErrs[1:]
		return 0, err
	}
	b, ok := r.blogs[id]
	if !ok {
		return 0, domain.ErrBlogNotFound
	}
	b.Likes++
	return b.Likes, nil
}

func (r *stubBlogRepo) ExistsSlug(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owner := r.slugOwner(slug)
	return owner != "" && owner != excludeID, nil
}

type stubCommentRepo struct {
	comments map[string]*domain.Comment
	seq      int
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[string]*domain.Comment)}
}

func (r *stubCommentRepo) Insert(_ context.Context, c *domain.Comment) error {
	r.seq++
	c.ID = fmt.Sprintf("c-%d", r.seq)
	clone := *c
	r.comments[c.ID] = &clone
	return nil
}

func (r *stubCommentRepo) ListByBlog(_ context.Context, blogID string, approvedOnly bool) ([]*domain.Comment, error) {
	out := []*domain.Comment{}
	for _, c := range r.comments {
		if c.BlogID == blogID && (!approvedOnly || c.Approved) {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubCommentRepo) ListPending(_ context.Context, limit int) ([]*domain.Comment, error) {
	out := []*domain.Comment{}
	for _, c := range r.comments {
		if !c.Approved && len(out) < limit {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubCommentRepo) CountPending(_ context.Context) (int64, error) {
	var n int64
	for _, c := range r.comments {
		if !c.Approved {
			n++
		}
	}
	return n, nil
}

func (r *stubCommentRepo) Approve(_ context.Context, id string) (*domain.Comment, error) {
	c, ok := r.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	c.Approved = true
	clone := *c
	return &clone, nil
}

func (r *stubCommentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *stubCommentRepo) DeleteByBlog(_ context.Context, blogID string) (int64, error) {
	var n int64
	for id, c := range r.comments {
		if c.BlogID == blogID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}

type stubImageStore struct {
	objects map[string][]byte
	putErr  error
	// failAfter makes Put fail once this many objects have been stored.
	failAfter int
}

func newStubImageStore() *stubImageStore {
	return &stubImageStore{objects: make(map[string][]byte), failAfter: -1}
}

func (s *stubImageStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if s.putErr != nil || (s.failAfter >= 0 && len(s.objects) >= s.failAfter) {
		return fmt.Errorf("put %s: disk full", key)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *stubImageStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *stubImageStore) URL(key string) string { return "/uploads/" + key }

type stubLikeGuard struct {
	seen map[string]bool
	err  error
}

func newStubLikeGuard() *stubLikeGuard {
	return &stubLikeGuard{seen: make(map[string]bool)}
}

func (g *stubLikeGuard) FirstLike(_ context.Context, blogID, fingerprint string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	k := blogID + ":" + fingerprint
	if g.seen[k] {
		return false, nil
	}
	g.seen[k] = true
	return true, nil
}

func (g *stubLikeGuard) Forget(_ context.Context, blogID, fingerprint string) error {
	delete(g.seen, blogID+":"+fingerprint)
	return nil
}

type stubQueue struct {
	items []domain.CommentNotification
}

func (q *stubQueue) Enqueue(n domain.CommentNotification) bool {
	q.items = append(q.items, n)
	return true
}
